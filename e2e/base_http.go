package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
	client *http.Client
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set")
	}
	s.client = &http.Client{Timeout: 30 * time.Second}
}

// Step prints a colorized header, then runs fn as a subtest.
func (s *BaseHTTPSuite) Step(name string, fn func()) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
	s.Run(name, fn)
}

// Do sends body as JSON and decodes the response into out when out is not
// nil. It returns the status code.
func (s *BaseHTTPSuite) Do(method, path string, body, out any) int {
	var reader io.Reader
	var rawRequest []byte
	if body != nil {
		var err error
		rawRequest, err = json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(rawRequest)
	}
	req, err := http.NewRequest(method, strings.TrimRight(s.Config.RelayAddr, "/")+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	s.Require().NoError(err, "relay unreachable at "+s.Config.RelayAddr)
	defer resp.Body.Close()
	rawResponse, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintf(&logBuilder, "\nREQUEST:\n%s\nRESPONSE:\n%s", rawRequest, rawResponse)
	}
	s.T().Log(logBuilder.String())

	if out != nil && len(rawResponse) > 0 {
		s.Require().NoError(json.Unmarshal(rawResponse, out), string(rawResponse))
	}
	return resp.StatusCode
}
