package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/summarybot/summarybot/internal/biz/domain"
	"github.com/summarybot/summarybot/internal/biz/repo"
)

const (
	defaultBaseURL = "https://slack.com/api"
	pageLimit      = "200"
)

// Client is a thin Slack Web API client implementing repo.PlatformClient.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Slack client with a bot token.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is a non-ok response from the Slack API.
type apiError struct {
	Method string
	Code   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("slack %s: %s", e.Method, e.Code)
}

func (c *Client) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("build request %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return &apiError{Method: method, Code: envelope.Error}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode %s payload: %w", method, err)
		}
	}
	return nil
}

// AuthTest resolves the bot's own user ID.
func (c *Client) AuthTest(ctx context.Context) (string, error) {
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := c.call(ctx, "auth.test", url.Values{}, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

type wireChannel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

func (w wireChannel) toInfo() repo.ChannelInfo {
	return repo.ChannelInfo{ID: w.ID, Name: w.Name, IsPrivate: w.IsPrivate}
}

// ListChannels lists the channels visible to the bot.
func (c *Client) ListChannels(ctx context.Context) ([]repo.ChannelInfo, error) {
	var channels []repo.ChannelInfo
	cursor := ""
	for {
		params := url.Values{
			"types": {"public_channel,private_channel"},
			"limit": {pageLimit},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var resp struct {
			Channels []wireChannel `json:"channels"`
			Meta     struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
		}
		if err := c.call(ctx, "conversations.list", params, &resp); err != nil {
			return nil, err
		}
		for _, ch := range resp.Channels {
			channels = append(channels, ch.toInfo())
		}
		if resp.Meta.NextCursor == "" {
			return channels, nil
		}
		cursor = resp.Meta.NextCursor
	}
}

// GetChannelInfo looks up a channel by ID.
func (c *Client) GetChannelInfo(ctx context.Context, channelID string) (*repo.ChannelInfo, error) {
	var resp struct {
		Channel wireChannel `json:"channel"`
	}
	if err := c.call(ctx, "conversations.info", url.Values{"channel": {channelID}}, &resp); err != nil {
		return nil, err
	}
	info := resp.Channel.toInfo()
	return &info, nil
}

// GetChannelInfoByName looks up a channel by name. Returns (nil, nil) when
// no channel matches.
func (c *Client) GetChannelInfoByName(ctx context.Context, name string) (*repo.ChannelInfo, error) {
	name = strings.TrimPrefix(name, "#")
	channels, err := c.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	for _, ch := range channels {
		if strings.EqualFold(ch.Name, name) {
			found := ch
			return &found, nil
		}
	}
	return nil, nil
}

type wireMessage struct {
	Ts         string `json:"ts"`
	User       string `json:"user"`
	Text       string `json:"text"`
	ThreadTs   string `json:"thread_ts"`
	ReplyCount int    `json:"reply_count"`
	BotID      string `json:"bot_id"`
	Subtype    string `json:"subtype"`
}

func (w wireMessage) toDomain() domain.Message {
	return domain.Message{
		Ts:         w.Ts,
		User:       w.User,
		Text:       w.Text,
		ThreadTs:   w.ThreadTs,
		ReplyCount: w.ReplyCount,
		BotID:      w.BotID,
		Subtype:    w.Subtype,
	}
}

// History fetches one page of channel history, newest first.
func (c *Client) History(ctx context.Context, channelID, oldest, cursor string) (*repo.HistoryPage, error) {
	params := url.Values{
		"channel": {channelID},
		"limit":   {pageLimit},
	}
	if oldest != "" {
		params.Set("oldest", oldest)
	}
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	var resp struct {
		Messages []wireMessage `json:"messages"`
		Meta     struct {
			NextCursor string `json:"next_cursor"`
		} `json:"response_metadata"`
		HasMore bool `json:"has_more"`
	}
	if err := c.call(ctx, "conversations.history", params, &resp); err != nil {
		return nil, err
	}

	page := &repo.HistoryPage{}
	for _, m := range resp.Messages {
		page.Messages = append(page.Messages, m.toDomain())
	}
	if resp.HasMore {
		page.NextCursor = resp.Meta.NextCursor
	}
	return page, nil
}

// Replies fetches a full thread, parent first then replies.
func (c *Client) Replies(ctx context.Context, channelID, parentTs string) ([]domain.Message, error) {
	var all []domain.Message
	cursor := ""
	for {
		params := url.Values{
			"channel": {channelID},
			"ts":      {parentTs},
			"limit":   {pageLimit},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var resp struct {
			Messages []wireMessage `json:"messages"`
			Meta     struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
			HasMore bool `json:"has_more"`
		}
		if err := c.call(ctx, "conversations.replies", params, &resp); err != nil {
			return nil, err
		}
		for _, m := range resp.Messages {
			all = append(all, m.toDomain())
		}
		if !resp.HasMore || resp.Meta.NextCursor == "" {
			return all, nil
		}
		cursor = resp.Meta.NextCursor
	}
}

// SendMessage posts a text message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	params := url.Values{
		"channel":      {channelID},
		"text":         {text},
		"unfurl_links": {"false"},
	}
	return c.call(ctx, "chat.postMessage", params, nil)
}

// OpenDirectMessage opens (or resumes) the bot's DM with a user.
func (c *Client) OpenDirectMessage(ctx context.Context, userID string) (string, error) {
	var resp struct {
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	}
	if err := c.call(ctx, "conversations.open", url.Values{"users": {userID}}, &resp); err != nil {
		return "", err
	}
	return resp.Channel.ID, nil
}

type wireUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Profile  struct {
		DisplayName string `json:"display_name"`
	} `json:"profile"`
	Deleted bool `json:"deleted"`
	IsBot   bool `json:"is_bot"`
}

func (w wireUser) toInfo() repo.UserInfo {
	return repo.UserInfo{
		ID:          w.ID,
		Name:        w.Name,
		RealName:    w.RealName,
		DisplayName: w.Profile.DisplayName,
	}
}

// LookupUser looks up a user by ID. Returns (nil, nil) when the user does
// not exist.
func (c *Client) LookupUser(ctx context.Context, userID string) (*repo.UserInfo, error) {
	var resp struct {
		User wireUser `json:"user"`
	}
	err := c.call(ctx, "users.info", url.Values{"user": {userID}}, &resp)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Code == "user_not_found" {
			return nil, nil
		}
		return nil, err
	}
	info := resp.User.toInfo()
	return &info, nil
}

// SearchUserByName finds a user by username, display name or real name.
// Returns (nil, nil) when nobody matches.
func (c *Client) SearchUserByName(ctx context.Context, name string) (*repo.UserInfo, error) {
	name = strings.TrimPrefix(name, "@")
	cursor := ""
	for {
		params := url.Values{"limit": {pageLimit}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var resp struct {
			Members []wireUser `json:"members"`
			Meta    struct {
				NextCursor string `json:"next_cursor"`
			} `json:"response_metadata"`
		}
		if err := c.call(ctx, "users.list", params, &resp); err != nil {
			return nil, err
		}
		for _, u := range resp.Members {
			if u.Deleted || u.IsBot {
				continue
			}
			if strings.EqualFold(u.Name, name) ||
				strings.EqualFold(u.Profile.DisplayName, name) ||
				strings.EqualFold(u.RealName, name) {
				info := u.toInfo()
				return &info, nil
			}
		}
		if resp.Meta.NextCursor == "" {
			return nil, nil
		}
		cursor = resp.Meta.NextCursor
	}
}
