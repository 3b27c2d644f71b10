// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"go.uber.org/zap"
)

const (
	eventSystemStartup  = "sys_startup"
	eventSystemShutdown = "sys_shutdown"
	eventAuthnFailure   = "authn_login_fail"
	eventAuthzFailure   = "authz_fail"
	eventAdminAction    = "sys_admin_action"
)

type SecurityLogger struct {
	l *zap.Logger
}

func (s *SecurityLogger) log(event, description string, keysAndValues ...interface{}) {
	s.l.Sugar().Infow(
		description,
		append([]interface{}{"type", "security", "event", event}, keysAndValues...)...,
	)
}

func (s *SecurityLogger) SystemStartup(keysAndValues ...interface{}) {
	s.log(eventSystemStartup, "system started", keysAndValues...)
}

func (s *SecurityLogger) SystemShutdown(keysAndValues ...interface{}) {
	s.log(eventSystemShutdown, "system shutting down", keysAndValues...)
}

// AuthnFailure records a failed login for the given account identifier.
func (s *SecurityLogger) AuthnFailure(account string, keysAndValues ...interface{}) {
	s.log(eventAuthnFailure, "authentication failed", append([]interface{}{"account", account}, keysAndValues...)...)
}

// AuthzFailure records a denied access of actor to resource.
func (s *SecurityLogger) AuthzFailure(actor, resource string, keysAndValues ...interface{}) {
	s.log(eventAuthzFailure, "authorization denied", append([]interface{}{"actor", actor, "resource", resource}, keysAndValues...)...)
}

func (s *SecurityLogger) AdminAction(actor, action, resource string, keysAndValues ...interface{}) {
	s.log(eventAdminAction, "administrative action", append([]interface{}{"actor", actor, "action", action, "resource", resource}, keysAndValues...)...)
}

func newSecurityLogger(l *zap.Logger) *SecurityLogger {
	return &SecurityLogger{l: l.Named("security")}
}
