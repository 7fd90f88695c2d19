// Package reconciler repairs friend edges that only exist in one direction.
package reconciler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Luismorlan/socialmux/engine"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

const (
	DefaultScanInterval = 10 * time.Minute
)

type FriendEdgeReconcilerConfig struct {
	Name string
	// Interval between two full scans.
	ScanInterval time.Duration
}

// FriendEdgeReconciler completes half written friendships. A friendship is
// repaired by adding the missing reverse edge. It checks every pair reported
// on the event bus right away, and periodically scans the whole graph.
type FriendEdgeReconciler struct {
	engine.Module

	Config FriendEdgeReconcilerConfig

	users      store.UserStore
	subscriber message.Subscriber
	stats      utils.StatsReporter
}

func NewFriendEdgeReconciler(config FriendEdgeReconcilerConfig, users store.UserStore, subscriber message.Subscriber, stats utils.StatsReporter) *FriendEdgeReconciler {
	if config.ScanInterval <= 0 {
		config.ScanInterval = DefaultScanInterval
	}
	if config.Name == "" {
		config.Name = "friend_edge_reconciler"
	}
	if stats == nil {
		stats = utils.NoopStats
	}
	return &FriendEdgeReconciler{
		Config:     config,
		users:      users,
		subscriber: subscriber,
		stats:      stats,
	}
}

func (r *FriendEdgeReconciler) Name() string {
	return r.Config.Name
}

// RunModule blocks until ctx is done. An error is only returned if the
// subscription could not be set up.
func (r *FriendEdgeReconciler) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.subscriber.Subscribe(ctx, engine.TOPIC_FRIEND_EDGE_CHANGED)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(r.Config.ScanInterval)
	defer ticker.Stop()

	// startup scan catches anything left over by a previous process
	r.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.scan(ctx)
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handleMessage(ctx, msg)
		}
	}
}

func (r *FriendEdgeReconciler) scan(ctx context.Context) {
	repaired, err := r.RunOnce(ctx)
	if err != nil {
		Logger.Log.Errorln("friend edge scan failed", err)
		return
	}
	if repaired > 0 {
		Logger.Log.Infof("friend edge scan repaired %d edges", repaired)
	}
}

func (r *FriendEdgeReconciler) handleMessage(ctx context.Context, msg *message.Message) {
	// Ack first, a failed check is retried by the next scan.
	msg.Ack()

	var event engine.FriendEdgeChanged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		Logger.Log.Errorln("malformed friend edge event", err)
		return
	}
	if err := r.CheckPair(ctx, event.UserId, event.FriendId); err != nil {
		Logger.Log.Errorln("fail to check friend pair", err)
	}
}

// RunOnce scans the graph and repairs every asymmetric edge. Returns the
// number of repaired edges.
func (r *FriendEdgeReconciler) RunOnce(ctx context.Context) (int, error) {
	edges, err := r.users.ListAsymmetricEdges(ctx)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, edge := range edges {
		if err := r.repair(ctx, edge); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// CheckPair repairs the friendship between a and b if only one direction is
// stored.
func (r *FriendEdgeReconciler) CheckPair(ctx context.Context, a, b string) error {
	forward := model.FriendEdge{UserId: a, FriendId: b}
	hasForward, err := r.users.HasFriendEdge(ctx, forward)
	if err != nil {
		return err
	}
	hasBackward, err := r.users.HasFriendEdge(ctx, forward.Reverse())
	if err != nil {
		return err
	}
	switch {
	case hasForward && !hasBackward:
		return r.repair(ctx, forward)
	case !hasForward && hasBackward:
		return r.repair(ctx, forward.Reverse())
	}
	return nil
}

// repair adds the reverse of edge.
func (r *FriendEdgeReconciler) repair(ctx context.Context, edge model.FriendEdge) error {
	Logger.Log.WithFields(logrus.Fields{
		"user_id":   edge.UserId,
		"friend_id": edge.FriendId,
	}).Warn("repairing one sided friend edge")
	if err := r.users.AddFriendEdge(ctx, edge.Reverse()); err != nil {
		return err
	}
	utils.ReportIncr(r.stats, utils.StatFriendEdgeRepair)
	return nil
}
