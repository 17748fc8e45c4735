package core

import (
	"net/url"
	"regexp"
	"strings"
)

// EvidenceKind tells a view how to present a Bukti value.
type EvidenceKind string

const (
	EvidenceNone      EvidenceKind = "none"
	EvidenceText      EvidenceKind = "text"
	EvidenceDrive     EvidenceKind = "drive"
	EvidenceInstagram EvidenceKind = "instagram"
	EvidenceImage     EvidenceKind = "image"
	EvidenceLink      EvidenceKind = "link"
)

// Evidence is a classified Bukti cell.
type Evidence struct {
	Kind      EvidenceKind
	Value     string
	URL       string
	Thumbnail string
}

var (
	drivePathID  = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)
	driveQueryID = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
	imageExt     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|webp|bmp|svg)(\?.*)?$`)
)

// DriveFileID extracts a Google Drive file id from a share link.
func DriveFileID(link string) (string, bool) {
	if m := drivePathID.FindStringSubmatch(link); m != nil {
		return m[1], true
	}
	if m := driveQueryID.FindStringSubmatch(link); m != nil {
		return m[1], true
	}
	return "", false
}

// ClassifyEvidence decides how a Bukti value should be shown.
func ClassifyEvidence(value string) Evidence {
	value = strings.TrimSpace(value)
	ev := Evidence{Value: value}
	if value == "" {
		ev.Kind = EvidenceNone
		return ev
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		ev.Kind = EvidenceText
		return ev
	}
	ev.URL = value
	switch {
	case isDriveHost(u.Host):
		if id, ok := DriveFileID(value); ok {
			ev.Kind = EvidenceDrive
			ev.Thumbnail = "https://drive.google.com/thumbnail?id=" + id + "&sz=w800"
			return ev
		}
	case strings.Contains(value, "instagram.com") || strings.Contains(value, "instagr.am"):
		ev.Kind = EvidenceInstagram
		return ev
	}
	if imageExt.MatchString(value) {
		ev.Kind = EvidenceImage
		ev.Thumbnail = value
		return ev
	}
	ev.Kind = EvidenceLink
	return ev
}

func isDriveHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, "drive.google.com") || strings.HasSuffix(host, "docs.google.com")
}
