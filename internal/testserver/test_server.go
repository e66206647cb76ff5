// Package testserver assembles the full service graph over an in-memory
// database for end-to-end tests.
package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/mcp"
	"github.com/rpggio/freightline/internal/notify"
	"github.com/rpggio/freightline/internal/sqlite"
	"github.com/rpggio/freightline/internal/transport"
	"github.com/stretchr/testify/require"
)

// ApproverEmail receives edit request notifications.
const ApproverEmail = "approvals@freightline.test"

type TestServer struct {
	DB       *sqlite.DB
	Actors   *sqlite.ActorRepository
	Services mcp.Services
	Outbox   *Outbox
	HTTP     *httptest.Server
}

func New(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	policy := access.DefaultPolicy()
	actors := sqlite.NewActorRepository(db)
	outbox := &Outbox{}
	dispatcher := notify.NewDispatcher(outbox, nil)

	allocator := sequence.NewService(sqlite.NewCounterRepository(db), nil)
	auditSvc := audit.NewService(sqlite.NewAuditRepository(db), nil)
	jobSvc := job.NewService(sqlite.NewJobRepository(db), allocator, policy, auditSvc, dispatcher, job.DefaultOptions(), nil)
	quoteSvc := quote.NewService(sqlite.NewQuoteRepository(db), allocator, jobSvc, policy, auditSvc, string(sequence.ModeSea), nil)
	editSvc := editgrant.NewService(policy, auditSvc, editgrant.Options{
		Notifier:      dispatcher,
		Directory:     actors,
		ApproverEmail: ApproverEmail,
	}, nil)
	editSvc.Register(audit.EntityJob, jobSvc.EditTarget())
	editSvc.Register(audit.EntityQuote, quoteSvc.EditTarget())

	services := mcp.Services{
		Allocator: allocator,
		Jobs:      jobSvc,
		Quotes:    quoteSvc,
		Edits:     editSvc,
		Audit:     auditSvc,
	}

	server := mcp.NewServer(mcp.Config{
		Services:      services,
		Authorizer:    policy,
		Resolver:      actors,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	httpServer := httptest.NewServer(transport.NewRouter(server, transport.Options{
		Auth: transport.AuthMiddleware(actors),
	}))

	t.Cleanup(func() {
		httpServer.Close()
		_ = db.Close()
	})

	return &TestServer{
		DB:       db,
		Actors:   actors,
		Services: services,
		Outbox:   outbox,
		HTTP:     httpServer,
	}
}

// AddActor registers actor with a fresh API key and returns the token.
func (ts *TestServer) AddActor(t *testing.T, actor access.Actor) string {
	t.Helper()
	token, err := sqlite.GenerateKey()
	require.NoError(t, err)
	_, err = ts.Actors.AddKey(context.Background(), token, actor)
	require.NoError(t, err)
	return token
}

// ConnectAs opens an in-memory session that acts as actor without a token.
func (ts *TestServer) ConnectAs(t *testing.T, actor access.Actor) *Client {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(mcp.Config{
		Services:      ts.Services,
		Authorizer:    access.DefaultPolicy(),
		TransportMode: "stdio",
		DefaultActor:  actor,
	})
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		_ = serverSession.Wait()
	})
	return &Client{Session: session}
}

// ConnectHTTP opens a streamable HTTP session authenticated by token.
func (ts *TestServer) ConnectHTTP(t *testing.T, token string) (*Client, error) {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.HTTP.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{token: token, base: http.DefaultTransport}},
	}, nil)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = session.Close() })
	return &Client{Session: session}, nil
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (b bearerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("Authorization", "Bearer "+b.token)
	return b.base.RoundTrip(r)
}

// Client calls tools and decodes their JSON text payloads.
type Client struct {
	Session *sdkmcp.ClientSession
}

// Call invokes a tool. A tool-level failure is returned as *mcp.APIError.
func (c *Client) Call(t *testing.T, name string, args any) (json.RawMessage, *mcp.APIError) {
	t.Helper()
	result, err := c.Session.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "tool %s returned no content", name)

	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned non-text content", name)

	if result.IsError {
		var apiErr mcp.APIError
		require.NoError(t, json.Unmarshal([]byte(text.Text), &apiErr), "tool %s error payload: %s", name, text.Text)
		return nil, &apiErr
	}
	return json.RawMessage(text.Text), nil
}

// MustCall invokes a tool and fails the test on a tool error.
func (c *Client) MustCall(t *testing.T, name string, args any) json.RawMessage {
	t.Helper()
	data, apiErr := c.Call(t, name, args)
	require.Nil(t, apiErr, "tool %s failed: %+v", name, apiErr)
	return data
}

// Outbox records notifications instead of delivering them.
type Outbox struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (o *Outbox) Send(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns the notifications sent so far.
func (o *Outbox) Messages() []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]notify.Message(nil), o.messages...)
}
