package natsx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"collabhub/logger"
	"collabhub/service/hub"
)

// Subjects the CRUD layer publishes on.
const (
	SubjectInvitation    = "notify.invitation"
	SubjectAccessRequest = "notify.access_request"
	SubjectMeetingInvite = "notify.meeting_invite"

	queueGroup = "collabhub"
)

// WorkspaceDirectory resolves a workspace to the user ids that receive
// access-request notifications (owner + admins).
type WorkspaceDirectory interface {
	WorkspaceAdmins(ctx context.Context, workspaceID string) ([]string, error)
}

type invitationMsg struct {
	Email      string         `json:"email"`
	Invitation map[string]any `json:"invitation"`
}

type accessRequestMsg struct {
	WorkspaceID string         `json:"workspaceId"`
	Request     map[string]any `json:"request"`
}

type meetingInviteMsg struct {
	UserIDs []string       `json:"userIds"`
	Meeting map[string]any `json:"meeting"`
}

// Intake subscribes the notify subjects and forwards to the dispatcher.
type Intake struct {
	client   *Client
	notifier *hub.Notifier
	wsdir    WorkspaceDirectory
}

func NewIntake(client *Client, notifier *hub.Notifier, wsdir WorkspaceDirectory) *Intake {
	return &Intake{client: client, notifier: notifier, wsdir: wsdir}
}

func (i *Intake) Start() error {
	if err := i.client.QueueSubscribe(SubjectInvitation, queueGroup, i.onInvitation); err != nil {
		return err
	}
	if err := i.client.QueueSubscribe(SubjectAccessRequest, queueGroup, i.onAccessRequest); err != nil {
		return err
	}
	return i.client.QueueSubscribe(SubjectMeetingInvite, queueGroup, i.onMeetingInvite)
}

func (i *Intake) onInvitation(m *nats.Msg) {
	var msg invitationMsg
	if err := json.Unmarshal(m.Data, &msg); err != nil || msg.Email == "" {
		logger.Warnf("[intake] bad invitation payload: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// invited address may have no account or no live session yet: drop
	i.notifier.NotifyEmail(ctx, msg.Email, hub.EvNewInvitation, msg.Invitation)
}

func (i *Intake) onAccessRequest(m *nats.Msg) {
	var msg accessRequestMsg
	if err := json.Unmarshal(m.Data, &msg); err != nil || msg.WorkspaceID == "" {
		logger.Warnf("[intake] bad access-request payload: %v", err)
		return
	}
	if i.wsdir == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	admins, err := i.wsdir.WorkspaceAdmins(ctx, msg.WorkspaceID)
	if err != nil {
		logger.Warnf("[intake] resolve workspace %s admins: %v", msg.WorkspaceID, err)
		return
	}
	i.notifier.NotifyUsers(admins, hub.EvNewAccessRequest, msg.Request)
}

func (i *Intake) onMeetingInvite(m *nats.Msg) {
	var msg meetingInviteMsg
	if err := json.Unmarshal(m.Data, &msg); err != nil || len(msg.UserIDs) == 0 {
		logger.Warnf("[intake] bad meeting-invite payload: %v", err)
		return
	}
	i.notifier.NotifyUsers(msg.UserIDs, hub.EvMeetingInvite, msg.Meeting)
}
