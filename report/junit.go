package report

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/osmo-tool/osmo/history"
)

// JUnit renders the JUnit XML format consumed by CI systems for test
// result visualization.
type JUnit struct {
	// Title is the test-suites name attribute.
	Title string
}

type junitSuites struct {
	XMLName  xml.Name   `xml:"testsuites"`
	Name     string     `xml:"name,attr"`
	Tests    int        `xml:"tests,attr"`
	Failures int        `xml:"failures,attr"`
	Errors   int        `xml:"errors,attr"`
	Time     string     `xml:"time,attr"`
	Suite    junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string      `xml:"name,attr"`
	Tests     int         `xml:"tests,attr"`
	Failures  int         `xml:"failures,attr"`
	Errors    int         `xml:"errors,attr"`
	Time      string      `xml:"time,attr"`
	Timestamp string      `xml:"timestamp,attr"`
	Cases     []junitCase `xml:"testcase"`
}

type junitCase struct {
	ClassName string         `xml:"classname,attr"`
	Name      string         `xml:"name,attr"`
	Time      string         `xml:"time,attr"`
	SystemOut *junitCDATA    `xml:"system-out,omitempty"`
	Failures  []junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

type junitCDATA struct {
	Body string `xml:",chardata"`
}

// Render implements Renderer.
func (r *JUnit) Render(h *history.History) ([]byte, error) {
	title := r.Title
	if title == "" {
		title = "osmo"
	}

	doc := junitSuites{
		Name:     title,
		Tests:    h.TestCount(),
		Failures: h.ErrorCount(),
		Time:     seconds(h.Duration()),
		Suite: junitSuite{
			Name:      title + " suite",
			Tests:     h.TestCount(),
			Failures:  h.ErrorCount(),
			Time:      seconds(h.Duration()),
			Timestamp: h.StartTime().Format(time.RFC3339),
		},
	}

	for i, tc := range h.Tests() {
		jc := junitCase{
			ClassName: title,
			Name:      fmt.Sprintf("test_%d", i+1),
			Time:      seconds(tc.Duration()),
		}

		var trace []string
		for _, log := range tc.Steps() {
			trace = append(trace, fmt.Sprintf("%s %s (%.3fs)",
				log.Start.Format("15:04:05.000"), log.Name, log.Duration.Seconds()))
			if log.Failed() {
				jc.Failures = append(jc.Failures, junitFailure{
					Message: log.Err.Error(),
					Body:    fmt.Sprintf("step %q failed: %v", log.Name, log.Err),
				})
			}
		}
		for _, err := range tc.Errors() {
			jc.Failures = append(jc.Failures, junitFailure{
				Message: err.Error(),
				Body:    err.Error(),
			})
		}
		if len(trace) > 0 {
			jc.SystemOut = &junitCDATA{Body: strings.Join(trace, "\n")}
		}

		doc.Suite.Cases = append(doc.Suite.Cases, jc)
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// Extension implements Renderer.
func (r *JUnit) Extension() string {
	return "xml"
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
