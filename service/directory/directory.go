// Package directory resolves user and workspace identities for the hub.
// Reads only; the CRUD layer owns the documents.
package directory

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"collabhub/module/user/model"
	"collabhub/tools/errs"
)

type Directory struct {
	users   *mongo.Collection
	members *mongo.Collection
}

func New(db *mongo.Database) *Directory {
	return &Directory{
		users:   db.Collection(model.User{}.TableName()),
		members: db.Collection(model.WorkspaceMember{}.TableName()),
	}
}

// FindByEmail resolves an email address to a user id.
func (d *Directory) FindByEmail(dctx context.Context, email string) (string, error) {
	var u model.User
	err := d.users.FindOne(dctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", errs.ErrUserNotFound.WrapMsg("email", "email", email)
	}
	if err != nil {
		return "", errors.Wrapf(err, "find user by email %s", email)
	}
	return u.UserID, nil
}

// WorkspaceAdmins returns the owner and admin user ids of a workspace,
// the audience for access-request notifications.
func (d *Directory) WorkspaceAdmins(dctx context.Context, workspaceID string) ([]string, error) {
	cur, err := d.members.Find(dctx, bson.M{
		"workspace_id": workspaceID,
		"role":         bson.M{"$in": []int32{model.RoleAdmin, model.RoleOwner}},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "find admins of workspace %s", workspaceID)
	}
	defer cur.Close(dctx)

	var out []string
	for cur.Next(dctx) {
		var m model.WorkspaceMember
		if err := cur.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "decode workspace member")
		}
		out = append(out, m.UserID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errs.ErrWorkspaceMiss.WrapMsg("no admins", "workspace", workspaceID)
	}
	return out, nil
}
