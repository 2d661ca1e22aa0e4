package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// RefKind is what a user-supplied reference points at.
type RefKind string

const (
	// RefVideo points at a single video.
	RefVideo RefKind = "video"
	// RefChannel points at a channel by canonical ID.
	RefChannel RefKind = "channel"
	// RefHandle points at a channel by @handle; needs an API lookup.
	RefHandle RefKind = "handle"
	// RefUsername points at a channel by legacy username; needs an API lookup.
	RefUsername RefKind = "username"
)

// Ref is a parsed user-supplied video or channel reference.
type Ref struct {
	Kind  RefKind
	Value string
}

// ErrUnsupportedRef indicates the input is not a recognizable video or
// channel reference.
var ErrUnsupportedRef = errors.New("youtube: unsupported video or channel reference")

var (
	videoIDRe   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	channelIDRe = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
)

// ParseRef classifies a raw input string: a full YouTube URL in any of the
// common formats, a bare 11-character video ID, a bare UC... channel ID, or
// an @handle. Parsing is offline; handle and username refs still need
// ResolveChannelID to become canonical channel IDs.
func ParseRef(raw string) (Ref, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Ref{}, ErrUnsupportedRef
	}

	if strings.Contains(trimmed, "://") || strings.HasPrefix(trimmed, "www.") ||
		strings.HasPrefix(trimmed, "youtube.com") || strings.HasPrefix(trimmed, "youtu.be") {
		return parseURLRef(trimmed)
	}

	switch {
	case strings.HasPrefix(trimmed, "@"):
		return Ref{Kind: RefHandle, Value: strings.TrimPrefix(trimmed, "@")}, nil
	case channelIDRe.MatchString(trimmed):
		return Ref{Kind: RefChannel, Value: trimmed}, nil
	case videoIDRe.MatchString(trimmed):
		return Ref{Kind: RefVideo, Value: trimmed}, nil
	}
	return Ref{}, fmt.Errorf("%w: %q", ErrUnsupportedRef, raw)
}

func parseURLRef(raw string) (Ref, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %q", ErrUnsupportedRef, raw)
	}

	host := strings.TrimPrefix(parsed.Host, "www.")
	path := strings.Trim(parsed.Path, "/")

	switch {
	case host == "youtu.be":
		// youtu.be/VIDEO_ID
		if videoIDRe.MatchString(path) {
			return Ref{Kind: RefVideo, Value: path}, nil
		}
	case strings.HasSuffix(host, "youtube.com"):
		switch {
		case path == "watch":
			// youtube.com/watch?v=VIDEO_ID
			if id := parsed.Query().Get("v"); videoIDRe.MatchString(id) {
				return Ref{Kind: RefVideo, Value: id}, nil
			}
		case strings.HasPrefix(path, "shorts/"):
			if id := strings.TrimPrefix(path, "shorts/"); videoIDRe.MatchString(id) {
				return Ref{Kind: RefVideo, Value: id}, nil
			}
		case strings.HasPrefix(path, "channel/"):
			if id := strings.TrimPrefix(path, "channel/"); id != "" {
				return Ref{Kind: RefChannel, Value: id}, nil
			}
		case strings.HasPrefix(path, "@"):
			if handle := strings.TrimPrefix(path, "@"); handle != "" {
				return Ref{Kind: RefHandle, Value: handle}, nil
			}
		case strings.HasPrefix(path, "c/"):
			if name := strings.TrimPrefix(path, "c/"); name != "" {
				return Ref{Kind: RefUsername, Value: name}, nil
			}
		case strings.HasPrefix(path, "user/"):
			if name := strings.TrimPrefix(path, "user/"); name != "" {
				return Ref{Kind: RefUsername, Value: name}, nil
			}
		}
	}
	return Ref{}, fmt.Errorf("%w: %q", ErrUnsupportedRef, raw)
}

// ResolveChannelID turns any channel-shaped Ref into a canonical channel
// ID, calling the API for handles and usernames.
func (c *Client) ResolveChannelID(ctx context.Context, ref Ref) (string, error) {
	switch ref.Kind {
	case RefChannel:
		return ref.Value, nil
	case RefHandle:
		return c.channelIDForHandle(ctx, ref.Value)
	case RefUsername:
		return c.channelIDForUsername(ctx, ref.Value)
	default:
		return "", fmt.Errorf("%w: %q is not a channel reference", ErrUnsupportedRef, ref.Value)
	}
}
