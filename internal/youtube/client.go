// Package youtube is the data provider: it fetches videos, channel
// uploads, and comment threads through the YouTube Data API v3 and maps
// them to domain items.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/ytlens/sponsorlens/internal/domain"
	"github.com/ytlens/sponsorlens/internal/logger"
	"github.com/ytlens/sponsorlens/internal/telemetry"
)

// maxPageSize is the API's per-page ceiling for the list endpoints used
// here; playlistItems caps at 50.
const maxPageSize = 50

// ErrNotFound indicates the requested video, channel, or handle does not
// exist or is not visible with an API key.
var ErrNotFound = errors.New("youtube: resource not found")

// Client wraps the YouTube Data API service.
type Client struct {
	service   *youtube.Service
	pageSize  int64
	telemetry *telemetry.Provider
	logger    logger.Logger
}

// NewClient creates an API-key-authenticated YouTube client. pageSize is
// the per-page item count for list calls, clamped to the API's limits;
// zero selects the maximum.
func NewClient(ctx context.Context, apiKey string, pageSize int64, tel *telemetry.Provider, log logger.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return &Client{
		service:   service,
		pageSize:  clampPageSize(pageSize),
		telemetry: tel,
		logger:    log,
	}, nil
}

func clampPageSize(n int64) int64 {
	if n <= 0 || n > maxPageSize {
		return maxPageSize
	}
	return n
}

// GetVideo fetches one video's snippet as a RawItem. The item text is the
// video description, which is where sponsorship disclosures live.
func (c *Client) GetVideo(ctx context.Context, videoID string) (domain.RawItem, error) {
	call := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx)

	resp, err := call.Do()
	if err != nil {
		c.telemetry.RecordFetch(string(domain.KindVideo), 0, err)
		return domain.RawItem{}, wrapAPIError("fetch video", videoID, err)
	}
	if len(resp.Items) == 0 {
		c.telemetry.RecordFetch(string(domain.KindVideo), 0, ErrNotFound)
		return domain.RawItem{}, fmt.Errorf("%w: video %q", ErrNotFound, videoID)
	}

	item := videoToItem(resp.Items[0])
	c.telemetry.RecordFetch(string(domain.KindVideo), 1, nil)
	return item, nil
}

// ListVideoComments fetches one page of top-level comments for a video.
// An empty pageToken starts from the beginning.
func (c *Client) ListVideoComments(ctx context.Context, videoID, pageToken string) (domain.Page, error) {
	call := c.service.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		TextFormat("plainText").
		MaxResults(c.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		c.telemetry.RecordFetch(string(domain.KindComment), 0, err)
		return domain.Page{}, wrapAPIError("fetch comments", videoID, err)
	}

	page := domain.Page{NextPageToken: resp.NextPageToken}
	for _, thread := range resp.Items {
		if thread == nil || thread.Snippet == nil || thread.Snippet.TopLevelComment == nil {
			continue
		}
		page.Items = append(page.Items, commentToItem(thread.Snippet.TopLevelComment))
	}

	c.telemetry.RecordFetch(string(domain.KindComment), len(page.Items), nil)
	return page, nil
}

// ListChannelUploads fetches one page of a channel's uploaded videos via
// its uploads playlist.
func (c *Client) ListChannelUploads(ctx context.Context, channelID, pageToken string) (domain.Page, error) {
	playlistID, err := c.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		c.telemetry.RecordFetch(string(domain.KindVideo), 0, err)
		return domain.Page{}, err
	}

	call := c.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(c.pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		c.telemetry.RecordFetch(string(domain.KindVideo), 0, err)
		return domain.Page{}, wrapAPIError("fetch channel uploads", channelID, err)
	}

	page := domain.Page{NextPageToken: resp.NextPageToken}
	for _, pi := range resp.Items {
		if pi == nil || pi.Snippet == nil {
			continue
		}
		page.Items = append(page.Items, playlistItemToItem(pi))
	}

	c.telemetry.RecordFetch(string(domain.KindVideo), len(page.Items), nil)
	return page, nil
}

func (c *Client) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("fetch channel", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil ||
		resp.Items[0].ContentDetails.RelatedPlaylists == nil {
		return "", fmt.Errorf("%w: channel %q", ErrNotFound, channelID)
	}

	playlistID := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if playlistID == "" {
		return "", fmt.Errorf("%w: channel %q has no uploads playlist", ErrNotFound, channelID)
	}
	return playlistID, nil
}

// channelIDForHandle resolves an @handle to a channel ID.
func (c *Client) channelIDForHandle(ctx context.Context, handle string) (string, error) {
	resp, err := c.service.Channels.List([]string{"id"}).
		ForHandle(handle).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("resolve handle", handle, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: handle %q", ErrNotFound, handle)
	}
	return resp.Items[0].Id, nil
}

// channelIDForUsername resolves a legacy /user/ name to a channel ID.
func (c *Client) channelIDForUsername(ctx context.Context, username string) (string, error) {
	resp, err := c.service.Channels.List([]string{"id"}).
		ForUsername(username).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapAPIError("resolve username", username, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: username %q", ErrNotFound, username)
	}
	return resp.Items[0].Id, nil
}

func videoToItem(v *youtube.Video) domain.RawItem {
	item := domain.RawItem{
		ID:   v.Id,
		Kind: domain.KindVideo,
	}
	if v.Snippet != nil {
		item.Text = v.Snippet.Description
		item.Title = v.Snippet.Title
		item.AuthorRef = v.Snippet.ChannelTitle
		item.PublishedAt = parseTimestamp(v.Snippet.PublishedAt)
	}
	return item
}

func commentToItem(c *youtube.Comment) domain.RawItem {
	item := domain.RawItem{
		ID:   c.Id,
		Kind: domain.KindComment,
	}
	if c.Snippet != nil {
		item.Text = c.Snippet.TextDisplay
		item.AuthorRef = c.Snippet.AuthorDisplayName
		item.PublishedAt = parseTimestamp(c.Snippet.PublishedAt)
	}
	return item
}

func playlistItemToItem(pi *youtube.PlaylistItem) domain.RawItem {
	item := domain.RawItem{
		Kind:      domain.KindVideo,
		Text:      pi.Snippet.Description,
		Title:     pi.Snippet.Title,
		AuthorRef: pi.Snippet.ChannelTitle,
	}
	if pi.Snippet.ResourceId != nil {
		item.ID = pi.Snippet.ResourceId.VideoId
	}
	item.PublishedAt = parseTimestamp(pi.Snippet.PublishedAt)
	return item
}

func parseTimestamp(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &ts
}

// wrapAPIError keeps googleapi status information visible to callers so
// per-item failures can report the upstream status and message.
func wrapAPIError(op, ref string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 404 {
			return fmt.Errorf("%w: %s %q", ErrNotFound, op, ref)
		}
		return fmt.Errorf("%s %q: youtube API status %d: %s", op, ref, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%s %q: %w", op, ref, err)
}
