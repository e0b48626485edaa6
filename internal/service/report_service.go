package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuscore/dues-ledger/internal/domain"
	"github.com/campuscore/dues-ledger/internal/repository"
	customError "github.com/campuscore/dues-ledger/pkg/errors"
)

const (
	teacherLeaderboardKey = "report:teacher_leaderboard"
	leaderboardCacheTTL   = 5 * time.Minute
)

// ReportService serves the read-only reporting projections. The
// leaderboard is cached in Redis; cache failures are logged and the
// query falls through to the database.
type ReportService struct {
	ReportRepo repository.ReportRepository
	redis      *redis.Client
}

func NewReportService(reportRepo repository.ReportRepository, redisClient *redis.Client) *ReportService {
	return &ReportService{
		ReportRepo: reportRepo,
		redis:      redisClient,
	}
}

// TeacherLeaderboard returns teachers ranked by complaint count,
// fewest first, with the 5-down-to-1 rank mapping applied.
func (s *ReportService) TeacherLeaderboard(ctx context.Context) ([]*domain.TeacherStanding, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, teacherLeaderboardKey).Result()
		if err == nil {
			var standings []*domain.TeacherStanding
			if err = json.Unmarshal([]byte(cached), &standings); err == nil {
				return standings, nil
			}
		} else if err != redis.Nil {
			log.Printf("%v", customError.WrapCacheError(err))
		}
	}

	standings, err := s.ReportRepo.TeacherLeaderboard(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, standing := range standings {
		standing.Rank = rankForComplaints(standing.ComplaintCount)
	}

	if s.redis != nil {
		if payload, err := json.Marshal(standings); err == nil {
			if err = s.redis.Set(ctx, teacherLeaderboardKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("%v", customError.WrapCacheError(err))
			}
		}
	}

	return standings, nil
}

// FamilyOutstanding returns per-family remaining dues, largest first.
func (s *ReportService) FamilyOutstanding(ctx context.Context) ([]*domain.FamilyOutstanding, error) {
	families, err := s.ReportRepo.FamilyOutstanding(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return families, nil
}

// rankForComplaints maps a complaint count to the 1..5 standing shown
// on the leaderboard: a clean record ranks 5, four or more complaints
// rank 1.
func rankForComplaints(count int) int {
	switch {
	case count <= 0:
		return 5
	case count >= 4:
		return 1
	default:
		return 5 - count
	}
}
