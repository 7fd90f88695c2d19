package utils

import (
	"github.com/DataDog/datadog-go/statsd"
	. "github.com/Luismorlan/socialmux/utils/log"
)

// Counter names reported to Datadog.
const (
	StatUserRegistered   = "socialmux.user.registered"
	StatUserLogin        = "socialmux.user.login"
	StatPasswordReset    = "socialmux.user.password_reset"
	StatFriendToggled    = "socialmux.friend.toggled"
	StatFriendEdgeRepair = "socialmux.friend.edge_repaired"
	StatPostCreated      = "socialmux.post.created"
	StatPostLiked        = "socialmux.post.like_toggled"
	StatPostCommented    = "socialmux.post.commented"
)

// StatsReporter is the subset of the statsd client the services use.
// *statsd.Client satisfies it.
type StatsReporter interface {
	Incr(name string, tags []string, rate float64) error
}

type noopStats struct{}

func (noopStats) Incr(string, []string, float64) error { return nil }

// NoopStats drops every metric, used in tests and when no agent is
// configured.
var NoopStats StatsReporter = noopStats{}

// NewStatsReporter connects to the Datadog agent at addr. An empty addr
// returns NoopStats.
func NewStatsReporter(addr string) (StatsReporter, error) {
	if addr == "" {
		return NoopStats, nil
	}
	client, err := statsd.New(addr)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// ReportIncr is best effort, a failing agent never fails a request.
func ReportIncr(stats StatsReporter, name string, tags ...string) {
	if err := stats.Incr(name, tags, 1); err != nil {
		Log.Debugln("cannot report metric", name, err)
	}
}
