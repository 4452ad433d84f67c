package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cyra/logaudit/internal/apperrors"
	"github.com/cyra/logaudit/internal/config"
	"github.com/cyra/logaudit/internal/logging"
	"github.com/cyra/logaudit/internal/logtail"
	"github.com/cyra/logaudit/internal/normalize"
	"github.com/cyra/logaudit/internal/sink"
)

type FollowTestSuite struct {
	suite.Suite

	store *config.Store
}

func (s *FollowTestSuite) SetupTest() {
	cfg := config.Default()
	s.Require().NoError(config.Validate(cfg))
	s.store = config.NewStore(cfg)
}

func (s *FollowTestSuite) TestFollowWithoutLogs() {
	err := Follow(context.Background(), s.store, normalize.New(), logging.Discard(), sink.NewMemory(""))

	s.ErrorIs(err, apperrors.InvalidArgument)
}

func (s *FollowTestSuite) TestConsumeSwitchesRenderer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan logtail.Line, 10)
	out := sink.NewMemory("")
	done := make(chan error, 1)

	go func() {
		done <- consume(ctx, s.store, normalize.New(), logging.Discard(), lines, out)
	}()

	lines <- logtail.Line{Source: "sshd_log", Text: "[2019-01-23 12:44:26,665 +0100] 70e3031f admin a/1000000 LOGOUT"}
	lines <- logtail.Line{Source: "sshd_log", Text: "not an sshd_log line"}
	s.Eventually(func() bool { return len(out.Lines()) == 1 }, time.Second, 10*time.Millisecond)

	next := *s.store.Current()
	next.Output.Format = "json"
	s.store.Update(&next)

	lines <- logtail.Line{Source: "httpd_log", Text: `10.0.0.7 - - [19/Jan/2019:00:00:00 +0000] "GET / HTTP/1.1" 200 1 - "git/2.17.1"`}
	s.Eventually(func() bool { return len(out.Lines()) == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	s.NoError(<-done)

	got := out.Lines()
	s.Contains(got[0], " | 70e3031f | 1000000 | SSH | LOGOUT | ")
	s.True(strings.HasPrefix(got[1], `{"type":"HttpAuditEvent"`))
}

func (s *FollowTestSuite) TestConsumeIgnoresUnknownSource() {
	ctx, cancel := context.WithCancel(context.Background())

	lines := make(chan logtail.Line, 2)
	out := sink.NewMemory("")
	done := make(chan error, 1)

	go func() {
		done <- consume(ctx, s.store, normalize.New(), logging.Discard(), lines, out)
	}()

	lines <- logtail.Line{Source: "error_log", Text: "[2019-01-23 12:44:26,665 +0100] 70e3031f admin a/1000000 LOGOUT"}
	lines <- logtail.Line{Source: "sshd_log", Text: "[2019-01-23 12:44:26,665 +0100] 70e3031f admin a/1000000 LOGIN"}
	s.Eventually(func() bool { return len(out.Lines()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	s.NoError(<-done)
	s.Contains(out.Lines()[0], "| LOGIN |")
}

func TestFollowTestSuite(t *testing.T) {
	suite.Run(t, new(FollowTestSuite))
}
