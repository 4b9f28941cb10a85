package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-gateway/internal/media"
)

// DefaultYouTubeBaseURL is the YouTube Data API v3 root.
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

const youTubeMaxResults = 6

// YouTubeProvider implements media.VideoSearcher with the YouTube search endpoint.
type YouTubeProvider struct {
	*Client
	apiKey  string
	baseURL string
}

func NewYouTubeProvider(cfg HTTPClientConfig, apiKey string) *YouTubeProvider {
	return &YouTubeProvider{
		Client:  NewClient("youtube", cfg),
		apiKey:  apiKey,
		baseURL: DefaultYouTubeBaseURL,
	}
}

type youTubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails map[string]struct {
				URL string `json:"url"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (p *YouTubeProvider) SearchVideos(ctx context.Context, location string) ([]media.Video, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("youtube api key is not configured")
	}

	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("q", strings.TrimSpace(location)+" travel")
	values.Set("type", "video")
	values.Set("maxResults", strconv.Itoa(youTubeMaxResults))
	values.Set("key", p.apiKey)

	var payload youTubeSearchResponse
	if err := p.GetJSON(ctx, p.baseURL+"/search", values, &payload); err != nil {
		return nil, err
	}

	videos := make([]media.Video, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, media.Video{
			ID:        item.ID.VideoID,
			Title:     item.Snippet.Title,
			Thumbnail: pickThumbnail(item.Snippet.Thumbnails),
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
		})
	}
	return videos, nil
}

// pickThumbnail prefers the medium rendition, then high, then default.
func pickThumbnail(thumbs map[string]struct {
	URL string `json:"url"`
}) string {
	for _, size := range []string{"medium", "high", "default"} {
		if t, ok := thumbs[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
