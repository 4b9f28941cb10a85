package media

import (
	"context"

	"go.uber.org/zap"
)

// Video is one search hit for a location.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// MapInfo describes an embeddable map for a location.
type MapInfo struct {
	EmbedURL string  `json:"embedUrl"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Address  string  `json:"address"`
}

// VideoResult is the response body of a video lookup. Videos is never nil.
type VideoResult struct {
	Videos  []Video `json:"videos"`
	Message string  `json:"message,omitempty"`
}

// MapResult is the response body of a map lookup. Map is nil when nothing could be resolved.
type MapResult struct {
	Map     *MapInfo `json:"map"`
	Message string   `json:"message,omitempty"`
}

// VideoSearcher is implemented by the video-search provider.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, location string) ([]Video, error)
}

// PlaceLocator is implemented by the maps provider.
type PlaceLocator interface {
	Locate(ctx context.Context, location string) (MapInfo, error)
}

const (
	msgVideoUnconfigured = "YouTube API key not configured"
	msgVideoFailed       = "Unable to fetch videos for this location"
	msgMapUnconfigured   = "Google Maps API key not configured"
	msgMapFailed         = "Unable to locate this place on the map"
)

// VideoService looks up travel videos. Failures degrade to an empty list.
type VideoService struct {
	searcher VideoSearcher
	logger   *zap.Logger
}

// NewVideoService creates a VideoService. A nil searcher means no API key is configured.
func NewVideoService(searcher VideoSearcher, logger *zap.Logger) *VideoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoService{searcher: searcher, logger: logger}
}

func (s *VideoService) Search(ctx context.Context, location string) VideoResult {
	if s.searcher == nil {
		return VideoResult{Videos: []Video{}, Message: msgVideoUnconfigured}
	}

	videos, err := s.searcher.SearchVideos(ctx, location)
	if err != nil {
		s.logger.Warn("video search failed", zap.String("location", location), zap.Error(err))
		return VideoResult{Videos: []Video{}, Message: msgVideoFailed}
	}
	if videos == nil {
		videos = []Video{}
	}
	return VideoResult{Videos: videos}
}

// MapService looks up an embeddable map. Failures degrade to a nil map.
type MapService struct {
	locator PlaceLocator
	logger  *zap.Logger
}

// NewMapService creates a MapService. A nil locator means no API key is configured.
func NewMapService(locator PlaceLocator, logger *zap.Logger) *MapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MapService{locator: locator, logger: logger}
}

func (s *MapService) Lookup(ctx context.Context, location string) MapResult {
	if s.locator == nil {
		return MapResult{Message: msgMapUnconfigured}
	}

	info, err := s.locator.Locate(ctx, location)
	if err != nil {
		s.logger.Warn("map lookup failed", zap.String("location", location), zap.Error(err))
		return MapResult{Message: msgMapFailed}
	}
	return MapResult{Map: &info}
}
