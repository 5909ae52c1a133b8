//go:build integration

package revocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pantry/internal/jwttoken/revocation"
	"pantry/pkg/testutil/containers"
)

type RedisListSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	list  *revocation.RedisList
}

func TestRedisListSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisListSuite))
}

func (s *RedisListSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.list = revocation.NewRedisList(s.redis.Client)
}

func (s *RedisListSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisListSuite) TestRevokeAndCheck() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	// Other tokens are unaffected.
	revoked, err = s.list.IsRevoked(ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RedisListSuite) TestRevocationExpires() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "short-lived", 100*time.Millisecond))

	revoked, err := s.list.IsRevoked(ctx, "short-lived")
	s.Require().NoError(err)
	s.True(revoked)

	s.Require().Eventually(func() bool {
		revoked, err := s.list.IsRevoked(ctx, "short-lived")
		return err == nil && !revoked
	}, 2*time.Second, 50*time.Millisecond, "revocation should lapse with the key TTL")
}

func (s *RedisListSuite) TestEmptyJTIIsNoop() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "", time.Minute))

	revoked, err := s.list.IsRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
