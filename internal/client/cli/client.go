package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	gs "github.com/dmitrijs2005/entrelibros-auth/internal/server/grpc"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Session is a successful login.
type Session struct {
	Token   string
	User    models.Identity
	Message string
}

// AuthClient is the transport used by the commands.
type AuthClient interface {
	Login(ctx context.Context, email string, password []byte) (*Session, error)
	Me(ctx context.Context, token string) (models.Identity, error)
	Health(ctx context.Context) error
	Close() error
}

// APIError is a non-success answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

type httpClient struct {
	base string
	hc   *http.Client
}

func newHTTPClient(base string) *httpClient {
	return &httpClient{base: strings.TrimRight(base, "/"), hc: &http.Client{}}
}

func (c *httpClient) do(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: token})
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Code, apiErr.Message = payload.Code, payload.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *httpClient) Login(ctx context.Context, email string, password []byte) (*Session, error) {
	var out struct {
		Token   string          `json:"token"`
		User    models.Identity `json:"user"`
		Message string          `json:"message"`
	}
	in := map[string]string{"email": email, "password": string(password)}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, "", &out); err != nil {
		return nil, err
	}
	return &Session{Token: out.Token, User: out.User, Message: out.Message}, nil
}

func (c *httpClient) Me(ctx context.Context, token string) (models.Identity, error) {
	var out struct {
		User models.Identity `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, token, &out); err != nil {
		return models.Identity{}, err
	}
	return out.User, nil
}

func (c *httpClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, "", nil)
}

func (c *httpClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

type grpcClient struct {
	conn *grpc.ClientConn
	c    *gs.Client
}

func newGRPCClient(addr string, opts ...grpc.DialOption) (*grpcClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &grpcClient{conn: conn, c: gs.NewClient(conn)}, nil
}

// grpcError turns a status error into an APIError carrying the message key.
func grpcError(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return &APIError{Code: st.Code().String(), Message: st.Message()}
	}
	return err
}

func (c *grpcClient) Login(ctx context.Context, email string, password []byte) (*Session, error) {
	res, err := c.c.Login(ctx, email, string(password))
	if err != nil {
		return nil, grpcError(err)
	}
	return &Session{Token: res.Token, User: res.User, Message: res.Message}, nil
}

func (c *grpcClient) Me(ctx context.Context, token string) (models.Identity, error) {
	id, err := c.c.WhoAmI(ctx, token)
	if err != nil {
		return models.Identity{}, grpcError(err)
	}
	return id, nil
}

func (c *grpcClient) Health(ctx context.Context) error {
	return grpcError(c.c.Ping(ctx))
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}
