// Package backend is the REST client of the dashboard backend.
package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/eduflexsms/eduflex/core"
	"github.com/eduflexsms/eduflex/core/account"
	"github.com/eduflexsms/eduflex/core/attendance"
	"github.com/eduflexsms/eduflex/core/dashboard"
	"github.com/eduflexsms/eduflex/core/session"
	"github.com/eduflexsms/eduflex/core/student"
)

// Client calls the backend on behalf of the session it was given.
type Client struct {
	baseURL string
	http    *rest.Client
	sess    *session.Session
}

var _ dashboard.Backend = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config, sess *session.Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.API.Timeout}},
		sess:    sess,
	}
}

func (c *Client) Session() *session.Session {
	return c.sess
}

// endpoint joins the escaped path segments onto the base URL.
func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	return b.String()
}

// do sends a request and decodes a 2xx JSON response into out (when not nil).
func (c *Client) do(ctx context.Context, method rest.Method, endpoint string, query map[string]string, in, out interface{}) error {
	req := rest.Request{
		Method:      method,
		BaseURL:     endpoint,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: query,
	}
	if auth := c.sess.Authorization(); auth != "" {
		req.Headers["Authorization"] = auth
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encoding request")
		}
		req.Body = body
		req.Headers["Content-Type"] = "application/json"
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, resp.Body)
		if apiErr.IsUnauthorized() {
			c.sess.End()
		}
		return apiErr
	}
	if out == nil || resp.Body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(resp.Body), out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, endpoint)
	}
	return nil
}

// send is rest.Client.Send with the request bound to ctx.
func (c *Client) send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, err
	}
	res, err := c.http.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(res)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login authenticates and begins the session.
func (c *Client) Login(ctx context.Context, username, password string) (session.Identity, error) {
	var tok tokenResponse
	err := c.do(ctx, rest.Post, c.endpoint("api", "auth", "login"), nil, credentials{Username: username, Password: password}, &tok)
	if err != nil {
		return session.Identity{}, err
	}
	return c.sess.Begin(tok.Token)
}

// RefreshToken swaps the session token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) (session.Identity, error) {
	if !c.sess.Active() {
		return session.Identity{}, session.ErrNoSession
	}
	var tok tokenResponse
	if err := c.do(ctx, rest.Post, c.endpoint("api", "auth", "token-refresh"), nil, nil, &tok); err != nil {
		return session.Identity{}, err
	}
	return c.sess.Begin(tok.Token)
}

func (c *Client) Logout() {
	c.sess.End()
}

func (c *Client) Grades(ctx context.Context) ([]string, error) {
	var grades []string
	if err := c.do(ctx, rest.Get, c.endpoint("api", "students", "grades"), nil, nil, &grades); err != nil {
		return nil, err
	}
	return grades, nil
}

func (c *Client) Subjects(ctx context.Context) ([]student.Subject, error) {
	var subjects []student.Subject
	if err := c.do(ctx, rest.Get, c.endpoint("api", "subjects"), nil, nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (c *Client) CreateSubject(ctx context.Context, ns student.NewSubject) (student.Subject, error) {
	var sub student.Subject
	if err := c.do(ctx, rest.Post, c.endpoint("api", "subjects"), nil, ns, &sub); err != nil {
		return student.Subject{}, err
	}
	return sub, nil
}

// Students fetches one page of students. Empty filter fields are not sent.
func (c *Client) Students(ctx context.Context, filter student.Filter) (student.Page, error) {
	filter.Clean()
	query := map[string]string{"page": strconv.Itoa(filter.Page)}
	if filter.Search != "" {
		query["search"] = filter.Search
	}
	if filter.Grade != "" {
		query["grade"] = filter.Grade
	}
	if filter.Subject != "" {
		query["subject"] = filter.Subject
	}

	var page student.Page
	if err := c.do(ctx, rest.Get, c.endpoint("api", "students"), query, nil, &page); err != nil {
		return student.Page{}, err
	}
	return page, nil
}

type statusBody struct {
	Status attendance.Status `json:"status"`
}

func (c *Client) SetAttendance(ctx context.Context, slot attendance.Slot, status attendance.Status) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	endpoint := c.endpoint("api", "attendance", slot.StudentID, slot.Subject, strconv.Itoa(slot.Month), strconv.Itoa(slot.Week))
	return c.do(ctx, rest.Patch, endpoint, nil, statusBody{Status: status}, nil)
}

// ToggleRecord flips a fee or tute record; the returned value is the one the server reports.
func (c *Client) ToggleRecord(ctx context.Context, ref attendance.RecordRef) (attendance.Status, error) {
	if err := ref.Validate(); err != nil {
		return attendance.Pending, err
	}
	rt, _ := attendance.ParseRecordType(string(ref.Type))
	endpoint := c.endpoint("api", "records", ref.StudentID, ref.Subject, strconv.Itoa(ref.Month), string(rt))

	var resp statusBody
	if err := c.do(ctx, rest.Patch, endpoint, nil, nil, &resp); err != nil {
		return attendance.Pending, err
	}
	return resp.Status, nil
}

func (c *Client) Teachers(ctx context.Context, search string) ([]account.Account, error) {
	var query map[string]string
	if search = strings.TrimSpace(search); search != "" {
		query = map[string]string{"search": search}
	}
	var teachers []account.Account
	if err := c.do(ctx, rest.Get, c.endpoint("api", "teachers"), query, nil, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (c *Client) CreateTeacher(ctx context.Context, na account.NewAccount) (account.Account, error) {
	var acc account.Account
	if err := c.do(ctx, rest.Post, c.endpoint("api", "teachers"), nil, na, &acc); err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (c *Client) DeleteTeacher(ctx context.Context, id string) error {
	return c.do(ctx, rest.Delete, c.endpoint("api", "teachers", id), nil, nil, nil)
}
