package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"collabhub/module/user/model"
)

// presence key: hub:presence:<user>
// Value is the hub node id. The key exists iff the user is online.
func presenceKey(user string) string { return "hub:presence:" + user }

// Presence persists the derived online/offline status. The in-memory
// connection registry is the source of truth; this only mirrors the
// non-empty <-> empty transitions for the rest of the platform to read.
type Presence struct {
	nodeID string
	users  *mongo.Collection // nil when mongo mirroring is disabled
}

func NewPresence(nodeID string, users *mongo.Collection) *Presence {
	return &Presence{nodeID: nodeID, users: users}
}

// SetStatus flips the persisted status. Called once per non-empty<->empty
// transition of a user's presence record, never per connection.
func (p *Presence) SetStatus(pctx context.Context, userID, status string) error {
	if rdb == nil {
		return errors.New("redis not initialized")
	}
	var err error
	if status == model.StatusOnline {
		err = rdb.Set(pctx, presenceKey(userID), p.nodeID, 0).Err()
	} else {
		err = rdb.Del(pctx, presenceKey(userID)).Err()
	}
	if err != nil {
		return errors.Wrapf(err, "presence %s for user %s", status, userID)
	}

	if p.users != nil {
		_, err = p.users.UpdateOne(pctx,
			bson.M{"user_id": userID},
			bson.M{"$set": bson.M{"status": status, "update_time": time.Now()}},
		)
		if err != nil {
			return errors.Wrapf(err, "mirror %s status for user %s", status, userID)
		}
	}
	return nil
}

// Lookup reports whether the user is online and on which hub node.
func (p *Presence) Lookup(pctx context.Context, userID string) (nodeID string, online bool, err error) {
	if rdb == nil {
		return "", false, errors.New("redis not initialized")
	}
	val, err := rdb.Get(pctx, presenceKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
