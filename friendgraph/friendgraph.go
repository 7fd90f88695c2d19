// Package friendgraph reads and edits the symmetric friend graph.
package friendgraph

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Luismorlan/socialmux/engine"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultWriteAttempts = 3
	writeRetryBackoff    = 50 * time.Millisecond
)

type Service struct {
	users store.UserStore
	// nil disables change events
	publisher     message.Publisher
	stats         utils.StatsReporter
	writeAttempts int
}

func NewService(users store.UserStore, publisher message.Publisher, stats utils.StatsReporter, writeAttempts int) *Service {
	if writeAttempts <= 0 {
		writeAttempts = defaultWriteAttempts
	}
	if stats == nil {
		stats = utils.NoopStats
	}
	return &Service{
		users:         users,
		publisher:     publisher,
		stats:         stats,
		writeAttempts: writeAttempts,
	}
}

// GetUser returns targetId's profile. Profiles are only visible to their
// owner.
func (s *Service) GetUser(ctx context.Context, requesterId, targetId string) (*model.User, error) {
	if requesterId != targetId {
		return nil, utils.NewError(utils.ErrForbidden, "Not allowed to view this user")
	}
	return s.users.GetUserById(ctx, targetId)
}

func toSummaries(users []*model.User) ([]model.FriendSummary, error) {
	summaries := make([]model.FriendSummary, 0, len(users))
	for _, u := range users {
		var summary model.FriendSummary
		if err := copier.Copy(&summary, u); err != nil {
			return nil, errors.Wrap(err, "fail to project user")
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListFriends resolves userId's friends. Friend ids that no longer resolve to
// a user are skipped.
func (s *Service) ListFriends(ctx context.Context, userId string) ([]model.FriendSummary, error) {
	user, err := s.users.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	friends, err := s.users.GetUsersByIds(ctx, user.Friends)
	if err != nil {
		return nil, err
	}
	return toSummaries(friends)
}

// ListNonFriends returns every other user that is not a friend of userId.
func (s *Service) ListNonFriends(ctx context.Context, userId string) ([]model.FriendSummary, error) {
	user, err := s.users.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	others, err := s.users.ListUsersExcept(ctx, userId)
	if err != nil {
		return nil, err
	}
	strangers := make([]*model.User, 0, len(others))
	for _, other := range others {
		if !utils.ContainsString(user.Friends, other.Id) {
			strangers = append(strangers, other)
		}
	}
	return toSummaries(strangers)
}

// ToggleFriend befriends userId and otherId if they are strangers, and
// unfriends them otherwise. Returns userId's friends after the change.
func (s *Service) ToggleFriend(ctx context.Context, userId, otherId string) ([]model.FriendSummary, error) {
	if userId == otherId {
		return nil, utils.NewError(utils.ErrValidation, "Cannot befriend yourself")
	}
	user, err := s.users.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserById(ctx, otherId); err != nil {
		return nil, err
	}

	present := !utils.ContainsString(user.Friends, otherId)
	if err := s.setFriendship(ctx, userId, otherId, present); err != nil {
		return nil, err
	}
	Logger.Log.WithFields(logrus.Fields{
		"user_id":   userId,
		"friend_id": otherId,
		"present":   present,
	}).Info("friendship updated")
	utils.ReportIncr(s.stats, utils.StatFriendToggled)
	s.publishChange(engine.FriendEdgeChanged{UserId: userId, FriendId: otherId, Present: present})

	return s.ListFriends(ctx, userId)
}

// setFriendship retries the desired state write. The write is idempotent so a
// retry after an ambiguous failure is safe. Classified errors such as not
// found are not retried.
func (s *Service) setFriendship(ctx context.Context, a, b string, present bool) error {
	var err error
	for attempt := 1; attempt <= s.writeAttempts; attempt++ {
		err = s.users.SetFriendship(ctx, a, b, present)
		if err == nil || utils.KindOf(err) != utils.ErrInternal {
			return err
		}
		Logger.Log.Warnf("friendship write attempt %d/%d failed: %v", attempt, s.writeAttempts, err)
		if attempt == s.writeAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "friendship write cancelled")
		case <-time.After(writeRetryBackoff * time.Duration(attempt)):
		}
	}
	return errors.Wrap(err, "fail to write friendship")
}

// publishChange is best effort, the periodic reconcile scan covers lost
// events.
func (s *Service) publishChange(event engine.FriendEdgeChanged) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		Logger.Log.Errorln("fail to encode friend edge event", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.publisher.Publish(engine.TOPIC_FRIEND_EDGE_CHANGED, msg); err != nil {
		Logger.Log.Errorln("fail to publish friend edge event", err)
	}
}
