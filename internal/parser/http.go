package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cyra/logaudit/internal/apperrors"
)

// httpd_log example:
// 104.32.164.100 - - [24/Jan/2019:00:00:03 +0000] "GET /plugins/events-log/ HTTP/1.1" 404 9 - "Apache-HttpClient/4.5.3 (Java/1.8.0_191)"
var httpRe = regexp.MustCompile(`^(?P<ip>.*?)\s-\s(?P<user>.*?)\s\[(?P<timestamp>.*?)\]\s"` +
	`(?P<method>\w+)\s(?P<resource>.*?)\s(?P<protocol>.*?)"\s` +
	`(?P<status>\d+)\s(?P<contentLength>\d+|-)\s(?P<referrer>.*?)\s(?P<userAgent>.*?)$`)

// HTTPRecord holds the fields of one httpd_log line exactly as captured.
type HTTPRecord struct {
	IP            string
	User          string
	Timestamp     string
	Method        string
	Resource      string
	Protocol      string
	Status        int
	ContentLength string // "-" when unknown
	Referrer      string
	UserAgent     string // surrounding quotes preserved
}

func (*HTTPRecord) Source() string { return SourceHTTP }

// ParseHTTP extracts an HTTPRecord from a line, or fails without a partial record.
func ParseHTTP(line string) (*HTTPRecord, error) {
	m := httpRe.FindStringSubmatch(line)
	if m == nil {
		return nil, noMatch(SourceHTTP, line)
	}
	group := func(name string) string {
		return m[httpRe.SubexpIndex(name)]
	}

	status, err := strconv.Atoi(group("status"))
	if err != nil {
		return nil, apperrors.New(apperrors.ErrParse, fmt.Sprintf("%s parser: parse status in line: %s", SourceHTTP, line), err)
	}

	ua := group("userAgent")
	if strings.HasPrefix(ua, `"`) && (len(ua) < 2 || !strings.HasSuffix(ua, `"`)) {
		return nil, apperrors.NewParse(fmt.Sprintf("%s parser: unterminated user agent in line: %s", SourceHTTP, line))
	}

	return &HTTPRecord{
		IP:            group("ip"),
		User:          group("user"),
		Timestamp:     group("timestamp"),
		Method:        group("method"),
		Resource:      group("resource"),
		Protocol:      group("protocol"),
		Status:        status,
		ContentLength: group("contentLength"),
		Referrer:      group("referrer"),
		UserAgent:     ua,
	}, nil
}
