package audit

import (
	"context"
	"expvar"

	"github.com/oksasatya/mavrick-auth/internal/application"
)

// authEvents is published at /api/debug/vars as "auth_events", keyed "<action>.<outcome>".
var authEvents = expvar.NewMap("auth_events")

// ExpvarSink counts audit events per action and outcome.
type ExpvarSink struct{}

func NewExpvarSink() ExpvarSink { return ExpvarSink{} }

func (ExpvarSink) Record(_ context.Context, ev application.AuditEvent) {
	authEvents.Add(ev.Action+"."+ev.Outcome, 1)
}
