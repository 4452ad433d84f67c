package main

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

const sshdLine = "[2019-01-23 12:44:26,665 +0100] 70e3031f admin a/1000000 LOGOUT"

type CLITestSuite struct {
	suite.Suite

	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func (s *CLITestSuite) SetupTest() {
	appFs = afero.NewMemMapFs()
	configPath = ""
	s.stdout = &bytes.Buffer{}
	s.stderr = &bytes.Buffer{}
}

func (s *CLITestSuite) execute(stdin string, args ...string) error {
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(s.stdout)
	rootCmd.SetErr(s.stderr)
	return rootCmd.Execute()
}

func (s *CLITestSuite) TestVersion() {
	s.Require().NoError(s.execute("", "version"))

	s.Equal("logaudit version dev\n", s.stdout.String())
}

func (s *CLITestSuite) TestConvertStdin() {
	err := s.execute(sshdLine+"\n", "convert", "--source", "sshd_log", "--format", "csv", "--input", "", "--no-header=false")

	s.Require().NoError(err)
	lines := strings.Split(strings.TrimSuffix(s.stdout.String(), "\n"), "\n")
	s.Require().Len(lines, 2)
	s.True(strings.HasPrefix(lines[0], "EventId | EventTS"))
	s.Contains(lines[1], " | 2019/01/23 11:44:26.0665 | 70e3031f | 1000000 | SSH | LOGOUT | [] | 0 | ")
}

func (s *CLITestSuite) TestConvertGzipInputAsJSON() {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sshdLine + "\n"))
	s.Require().NoError(err)
	s.Require().NoError(zw.Close())
	s.Require().NoError(afero.WriteFile(appFs, "/logs/sshd_log.2019-01-23.gz", buf.Bytes(), 0o644))

	err = s.execute("", "convert", "--source", "sshd_log", "--format", "json", "--input", "/logs/sshd_log.2019-01-23.gz", "--no-header=false")

	s.Require().NoError(err)
	s.Contains(s.stdout.String(), `"type":"SshAuditEvent"`)
	s.Contains(s.stdout.String(), `"when":1548243866665`)
}

func (s *CLITestSuite) TestConvertUnknownSource() {
	err := s.execute("", "convert", "--source", "nginx", "--format", "", "--input", "", "--no-header=false")

	s.Error(err)
	s.Contains(err.Error(), "unknown parser")
}

func (s *CLITestSuite) TestTransform() {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(sshdLine + "\n"))
	s.Require().NoError(err)
	s.Require().NoError(zw.Close())
	s.Require().NoError(afero.WriteFile(appFs, "/gerrit/logs/sshd_log.2019-01-23.gz", buf.Bytes(), 0o644))

	cfgPath := filepath.Join(s.T().TempDir(), "logaudit.yaml")
	s.Require().NoError(os.WriteFile(cfgPath, []byte("logs_dir: /gerrit/logs\noutput:\n  dir: /audit\n"), 0o600))

	err = s.execute("", "transform", "--config", cfgPath, "--from", "2019-01-22", "--until", "2019-01-23", "--workers", "2", "--format", "csv")

	s.Require().NoError(err)
	s.Equal("Transformed HTTP and SSH logs from 2019-01-22 until 2019-01-23\n", s.stdout.String())

	data, err := afero.ReadFile(appFs, "/audit/audit_log.2019-01-23.log")
	s.Require().NoError(err)
	s.Contains(string(data), "| LOGOUT |")

	exists, err := afero.Exists(appFs, "/audit/audit_log.2019-01-22.log")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *CLITestSuite) TestTransformRejectsReversedRange() {
	err := s.execute("", "transform", "--from", "2019-01-23", "--until", "2019-01-22", "--workers", "0", "--format", "")

	s.Error(err)
	s.Contains(err.Error(), "'from' cannot be after 'until'")
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}
