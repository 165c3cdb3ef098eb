package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/tracer"
	"tickethub/internal/ticketing/models"
	id "tickethub/pkg/domain"
	"tickethub/pkg/requestcontext"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 1 << 20
)

// Client is the ticket service as seen by the ticketing flows.
// Every method reports a Result; none returns an error.
type Client interface {
	VerifyCard(ctx context.Context, cardNumber string, role models.Role) VerifyResult
	IssueTicket(ctx context.Context, req IssueRequest) Result
	ListTicketTypes(ctx context.Context) ([]models.TicketOption, Result)
	ListTickets(ctx context.Context, citizenID id.CitizenID) ([]models.TicketRecord, Result)
	ListAllTickets(ctx context.Context) ([]models.AdminTicket, Result)
	SubmitPayment(ctx context.Context, ticketID id.TicketID, method models.PaymentMethod) Result
}

// IssueRequest asks for a ticket of a catalog type to be issued to a citizen.
type IssueRequest struct {
	CitizenID    id.CitizenID
	TicketTypeID id.TicketTypeID
}

// HTTPClient implements Client against the ticket service's JSON API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
	tracer     tracer.Tracer
	metrics    *metrics.Metrics
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// WithAPIKey sends the key in X-API-Key on every call.
func WithAPIKey(key string) HTTPClientOption {
	return func(c *HTTPClient) {
		c.apiKey = key
	}
}

// WithTimeout bounds every call. Non-positive values keep the default.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *HTTPClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) HTTPClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

func WithTracer(t tracer.Tracer) HTTPClientOption {
	return func(c *HTTPClient) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) HTTPClientOption {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success *bool           `json:"success"`
	Message json.RawMessage `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// message accepts both a string and a list of strings, which the service
// returns for field validation failures.
func (e envelope) message() string {
	if len(e.Message) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(e.Message, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if json.Unmarshal(e.Message, &list) == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	return ""
}

type cardRequest struct {
	CardNumber string `json:"ghana_card"`
}

type issueRequest struct {
	UserID   id.CitizenID    `json:"userId"`
	TicketID id.TicketTypeID `json:"ticketId"`
}

type paymentRequest struct {
	Method models.PaymentMethod `json:"method"`
}

// call describes one endpoint invocation.
type call struct {
	op         string
	span       string
	method     string
	path       string
	body       any
	rejectMsg  string
	successMsg string
	attrs      []tracer.Attribute
}

func (c *HTTPClient) VerifyCard(ctx context.Context, cardNumber string, role models.Role) VerifyResult {
	path := "/ticket-system/user-validate"
	if role == models.RoleOfficer {
		path = "/ticket-system/validate"
	}

	var record models.IdentityRecord
	res := c.exchange(ctx, call{
		op:         "verify_card",
		span:       tracer.SpanVerifyCard,
		method:     http.MethodPost,
		path:       path,
		body:       cardRequest{CardNumber: cardNumber},
		rejectMsg:  MsgVerifyFailed,
		successMsg: MsgVerified,
		attrs: []tracer.Attribute{
			tracer.String(tracer.AttrCardHash, tracer.HashCardNumber(cardNumber)),
			tracer.String(tracer.AttrRole, role.String()),
		},
	}, func(data json.RawMessage) error {
		if err := json.Unmarshal(data, &record); err != nil {
			return err
		}
		if !record.WellFormed() {
			return errors.New("identity record missing id or card number")
		}
		return nil
	})

	if !res.OK() {
		return VerifyResult{Result: res}
	}
	return VerifyResult{Result: res, Record: &record}
}

func (c *HTTPClient) IssueTicket(ctx context.Context, req IssueRequest) Result {
	return c.exchange(ctx, call{
		op:         "issue_ticket",
		span:       tracer.SpanIssueTicket,
		method:     http.MethodPost,
		path:       "/ticket-system/generate-ticket",
		body:       issueRequest{UserID: req.CitizenID, TicketID: req.TicketTypeID},
		rejectMsg:  MsgIssueFailed,
		successMsg: MsgTicketIssued,
		attrs: []tracer.Attribute{
			tracer.Int64(tracer.AttrCitizenID, int64(req.CitizenID)),
			tracer.Int64(tracer.AttrTicketType, int64(req.TicketTypeID)),
		},
	}, nil)
}

func (c *HTTPClient) ListTicketTypes(ctx context.Context) ([]models.TicketOption, Result) {
	var options []models.TicketOption
	res := c.exchange(ctx, call{
		op:        "list_ticket_types",
		span:      tracer.SpanListTicketTypes,
		method:    http.MethodGet,
		path:      "/ticket-system/get-all-tickets",
		rejectMsg: MsgCatalogFailed,
	}, decodeList(&options))
	if !res.OK() {
		return nil, res
	}
	return options, res
}

func (c *HTTPClient) ListTickets(ctx context.Context, citizenID id.CitizenID) ([]models.TicketRecord, Result) {
	var tickets []models.TicketRecord
	res := c.exchange(ctx, call{
		op:        "list_tickets",
		span:      tracer.SpanListTickets,
		method:    http.MethodGet,
		path:      "/ticket-system/get-user-tickets/" + citizenID.String(),
		rejectMsg: MsgTicketsFailed,
		attrs:     []tracer.Attribute{tracer.Int64(tracer.AttrCitizenID, int64(citizenID))},
	}, decodeList(&tickets))
	if !res.OK() {
		return nil, res
	}
	return tickets, res
}

func (c *HTTPClient) ListAllTickets(ctx context.Context) ([]models.AdminTicket, Result) {
	var tickets []models.AdminTicket
	res := c.exchange(ctx, call{
		op:        "list_all_tickets",
		span:      tracer.SpanListAllTickets,
		method:    http.MethodGet,
		path:      "/ticket-system/get-all-users-with-tickets",
		rejectMsg: MsgTicketsFailed,
	}, decodeList(&tickets))
	if !res.OK() {
		return nil, res
	}
	return tickets, res
}

func (c *HTTPClient) SubmitPayment(ctx context.Context, ticketID id.TicketID, method models.PaymentMethod) Result {
	return c.exchange(ctx, call{
		op:         "submit_payment",
		span:       tracer.SpanSubmitPayment,
		method:     http.MethodPost,
		path:       "/ticket-system/make-payment/" + ticketID.String(),
		body:       paymentRequest{Method: method},
		rejectMsg:  MsgPaymentFailed,
		successMsg: MsgPaymentSucceeded,
		attrs: []tracer.Attribute{
			tracer.Int64(tracer.AttrTicketID, int64(ticketID)),
			tracer.String(tracer.AttrMethod, method.String()),
		},
	}, nil)
}

// Ping reports whether the service answers at all. Rejections count as up.
func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ticket-system/get-all-tickets", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyDoError(ctx, "ping", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return newCallError(failureServer, "ping", fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}
	return nil
}

// decodeList requires data to be a JSON array.
func decodeList[T any](out *[]T) func(json.RawMessage) error {
	return func(data json.RawMessage) error {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return errors.New("data is not a list")
		}
		return json.Unmarshal(trimmed, out)
	}
}

// exchange runs one call with tracing, metrics and logging around it.
func (c *HTTPClient) exchange(ctx context.Context, cl call, decode func(json.RawMessage) error) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	ctx, span := c.tracer.Start(ctx, cl.span, cl.attrs...)

	res, httpStatus, cause := c.roundTrip(ctx, cl, decode)

	span.SetAttributes(tracer.String(tracer.AttrOutcome, res.Outcome()))
	if httpStatus != 0 {
		span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, httpStatus))
	}
	if cause != nil {
		c.logger.WarnContext(ctx, "remote call failed",
			"operation", cl.op,
			"kind", string(cause.kind),
			"http_status", httpStatus,
			"error", cause.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		span.End(cause)
	} else {
		span.End(nil)
	}
	c.metrics.ObserveRemoteCall(cl.op, res.Outcome(), time.Since(start).Seconds())
	return res
}

func (c *HTTPClient) roundTrip(ctx context.Context, cl call, decode func(json.RawMessage) error) (Result, int, *callError) {
	var reader io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return transportFailure(), 0, newCallError(failureInternal, cl.op, "failed to marshal request", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, reader)
	if err != nil {
		return transportFailure(), 0, newCallError(failureInternal, cl.op, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if rid := requestcontext.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportFailure(), 0, classifyDoError(ctx, cl.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportFailure(), resp.StatusCode, newCallError(failureOutage, cl.op, "failed to read response body", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return transportFailure(), resp.StatusCode,
			newCallError(failureServer, cl.op, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return transportFailure(), resp.StatusCode, newCallError(failureContract, cl.op, "failed to parse response", err)
	}

	// A declined request may come back as a 4xx or as success:false.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (env.Success != nil && !*env.Success) {
		return rejected(env.message(), cl.rejectMsg), resp.StatusCode, nil
	}

	if decode != nil {
		if err := decode(env.Data); err != nil {
			return transportFailure(), resp.StatusCode, newCallError(failureContract, cl.op, "unexpected response shape", err)
		}
	}
	return ok(cl.successMsg), resp.StatusCode, nil
}
