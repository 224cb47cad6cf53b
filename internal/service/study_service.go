package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tidianesow/medical-e-academy/pkg/orthanc"
)

const (
	studiesCacheKey        = "dicom:studies"
	studyMetadataFanOut    = 8
	defaultStudiesCacheTTL = time.Minute
)

// ErrStudiesUnavailable indicates the imaging archive could not be read.
var ErrStudiesUnavailable = errors.New("dicom studies unavailable")

// StudySource reads study metadata from the imaging archive.
type StudySource interface {
	ListStudyIDs(ctx context.Context) ([]string, error)
	GetStudy(ctx context.Context, id string) (orthanc.Study, error)
}

// StudyService lists the DICOM studies exercises can refer to.
type StudyService interface {
	ListStudyUIDs(ctx context.Context) ([]string, error)
}

type studyService struct {
	source   StudySource
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewStudyService builds the study lister. cache may be nil.
func NewStudyService(source StudySource, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudyService {
	if ttl <= 0 {
		ttl = defaultStudiesCacheTTL
	}
	return &studyService{
		source:   source,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "study_service").Logger(),
	}
}

// ListStudyUIDs returns StudyInstanceUIDs in archive order, skipping studies
// without one.
func (s *studyService) ListStudyUIDs(ctx context.Context) ([]string, error) {
	if cached, ok := s.readCache(ctx); ok {
		return cached, nil
	}

	ids, err := s.source.ListStudyIDs(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orthanc studies")
		return nil, fmt.Errorf("%w: %w", ErrStudiesUnavailable, err)
	}

	uids := make([]string, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(studyMetadataFanOut)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			study, err := s.source.GetStudy(groupCtx, id)
			if err != nil {
				return fmt.Errorf("study %s: %w", id, err)
			}
			uids[i] = study.MainDicomTags.StudyInstanceUID
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to read orthanc study metadata")
		return nil, fmt.Errorf("%w: %w", ErrStudiesUnavailable, err)
	}

	result := make([]string, 0, len(uids))
	for _, uid := range uids {
		if uid != "" {
			result = append(result, uid)
		}
	}

	s.writeCache(ctx, result)
	return result, nil
}

func (s *studyService) readCache(ctx context.Context) ([]string, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, studiesCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read studies cache")
		}
		return nil, false
	}
	var uids []string
	if err := json.Unmarshal([]byte(cached), &uids); err != nil {
		return nil, false
	}
	return uids, true
}

func (s *studyService) writeCache(ctx context.Context, uids []string) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(uids)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, studiesCacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store studies cache")
	}
}
