package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// LoginResult is the decoded Login response.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      models.Identity
	Message   string
}

// Client calls the auth service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	in, err := structpb.NewStruct(map[string]any{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, LoginMethod, in, out); err != nil {
		return nil, err
	}

	user := out.GetFields()["user"].GetStructValue()
	res := &LoginResult{
		Token:   stringField(out, "token"),
		Message: stringField(out, "message"),
		User: models.Identity{
			ID:    stringField(user, "id"),
			Email: stringField(user, "email"),
			Role:  stringField(user, "role"),
		},
	}
	if ts := stringField(out, "expires_at"); ts != "" {
		if res.ExpiresAt, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// WhoAmI returns the identity behind token.
func (c *Client) WhoAmI(ctx context.Context, token string) (models.Identity, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, WhoAmIMethod, &structpb.Struct{}, out); err != nil {
		return models.Identity{}, err
	}

	user := out.GetFields()["user"].GetStructValue()
	return models.Identity{ID: stringField(user, "id"), Role: stringField(user, "role")}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Invoke(ctx, PingMethod, &structpb.Struct{}, new(structpb.Struct))
}
