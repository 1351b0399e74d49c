// Package notify provides the concrete delivery channels behind broadcasts.
package notify

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"

	apperrors "teamsqa-backend/pkg/errors"
)

// ErrConnectionGone reports a push connection that has disconnected.
var ErrConnectionGone = errors.New("push connection gone")

// PushSender delivers push payloads over API Gateway WebSocket connections.
type PushSender struct {
	client *apigatewaymanagementapi.Client
	logger *zap.Logger
}

// NewPushSender creates a push sender for the given management API client.
func NewPushSender(client *apigatewaymanagementapi.Client, logger *zap.Logger) *PushSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PushSender{client: client, logger: logger}
}

// SendPush posts the payload to one connection. A connection the peer has
// already closed returns ErrConnectionGone so callers can clear the stale
// connection ID.
func (p *PushSender) SendPush(ctx context.Context, connectionID string, payload []byte) error {
	_, err := p.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		var gone *types.GoneException
		if errors.As(err, &gone) {
			return ErrConnectionGone
		}
		return apperrors.NewExternal("push delivery", err)
	}
	return nil
}
