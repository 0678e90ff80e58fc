// Package callout locates a phrase on an OCR page. It matches the phrase
// against the words of a token stream and resolves the page region the
// matched words occupy.
package callout

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gardar/ocrcallout/pkg/locate"
	"github.com/gardar/ocrcallout/pkg/textmatch"
)

// Finding is a phrase located on the page.
type Finding struct {
	Match  textmatch.Result
	Region locate.Region
}

// Box returns the page-pixel box of the finding.
func (f Finding) Box() locate.Box { return f.Region.Box }

// Find matches phrase against the serialized token stream text and resolves
// the region of the best match. Geometry problems that do not prevent a
// result, such as a missing anchor line, are logged on logger and reflected
// in the returned region. A nil logger uses the standard logrus logger.
func Find(text, phrase string, logger logrus.FieldLogger) (Finding, error) {
	log := getLogger(logger).WithField("phrase", phrase)

	res, err := textmatch.Match(text, phrase)
	if err != nil {
		return Finding{}, fmt.Errorf("matching %q: %w", phrase, err)
	}
	return resolve(text, res, log)
}

// FindAll locates every phrase whose match scores at least threshold,
// strongest match first. Phrases without a match are skipped.
func FindAll(text string, phrases []string, threshold float64, logger logrus.FieldLogger) ([]Finding, error) {
	log := getLogger(logger)

	results, err := textmatch.MatchAll(text, phrases, threshold)
	if err != nil {
		return nil, fmt.Errorf("matching phrases: %w", err)
	}
	log.WithFields(logrus.Fields{
		"phrases": len(phrases),
		"matched": len(results),
	}).Debug("Matched phrases")

	findings := make([]Finding, 0, len(results))
	for _, res := range results {
		f, err := resolve(text, res, log.WithField("phrase", res.Query))
		if err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func resolve(text string, res textmatch.Result, log logrus.FieldLogger) (Finding, error) {
	log = log.WithFields(logrus.Fields{
		"matched": res.Text,
		"score":   res.Score,
	})
	log.Debug("Phrase matched")

	region, err := locate.Resolve(text, res.Text)
	if err != nil {
		return Finding{}, fmt.Errorf("locating %q: %w", res.Text, err)
	}
	diagnose(region, log)

	return Finding{Match: res, Region: region}, nil
}

// diagnose logs the geometry problems of a resolved region.
func diagnose(region locate.Region, log logrus.FieldLogger) {
	log = log.WithFields(logrus.Fields{
		"start": region.Start,
		"end":   region.End,
	})
	for _, tag := range region.Rejected {
		log.WithField("tag", tag).Warn("Skipped malformed line marker")
	}
	if region.Degraded() {
		log.Warn("No line marker precedes the match; top-left corner is unknown")
	}
	if len(region.Spanned) == 0 {
		log.Debug("No line marker inside the match; using the anchor line extent")
	}
	log.WithFields(logrus.Fields{
		"box":        region.Box.String(),
		"similarity": region.Score,
	}).Info("Resolved callout region")
}

func getLogger(logger logrus.FieldLogger) logrus.FieldLogger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger
}
