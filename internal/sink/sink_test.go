package sink

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type SinkTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (s *SinkTestSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.Require().NoError(s.fs.MkdirAll("/audit", 0o750))
}

func (s *SinkTestSuite) read(path string) string {
	data, err := afero.ReadFile(s.fs, path)
	s.Require().NoError(err)
	return string(data)
}

func (s *SinkTestSuite) TestFileWritesHeaderOnce() {
	for i := 0; i < 2; i++ {
		f, err := OpenFile(s.fs, "/audit/audit_log.log", "H")
		s.Require().NoError(err)
		s.Require().NoError(f.Write("line"))
		s.Require().NoError(f.Close())
	}

	s.Equal("H\nline\nline\n", s.read("/audit/audit_log.log"))
}

func (s *SinkTestSuite) TestFileWithoutHeader() {
	f, err := OpenFile(s.fs, "/audit/audit_log.log", "")
	s.Require().NoError(err)
	s.Equal("/audit/audit_log.log", f.Path())

	s.Require().NoError(f.Write(`{"type":"SshAuditEvent"}`))
	s.Require().NoError(f.Flush())
	s.Equal("{\"type\":\"SshAuditEvent\"}\n", s.read("/audit/audit_log.log"))

	s.Require().NoError(f.Close())
}

func (s *SinkTestSuite) TestFileOpenError() {
	_, err := OpenFile(afero.NewReadOnlyFs(s.fs), "/audit/audit_log.log", "H")

	s.Error(err)
	s.Contains(err.Error(), "open audit log")
}

func (s *SinkTestSuite) TestMemory() {
	m := NewMemory("H")
	s.Require().NoError(m.Write("a"))
	s.Require().NoError(m.Write("b"))

	lines := m.Lines()
	s.Equal([]string{"H", "a", "b"}, lines)

	lines[0] = "mutated"
	s.Equal("H", m.Lines()[0])
	s.NoError(m.Close())
}

func (s *SinkTestSuite) TestMemoryWithoutHeader() {
	s.Empty(NewMemory("").Lines())
}

func TestSinkTestSuite(t *testing.T) {
	suite.Run(t, new(SinkTestSuite))
}
