package razorblog

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// routeKind is the content intent a request path resolves to.
type routeKind int

const (
	routeNone routeKind = iota // no match; fall through to not-found
	routeStatic
	routeHome
	routeArchive
	routeComments
	routePost
)

// route is the outcome of classifying a request path. Exactly the fields
// relevant to the kind are populated.
type route struct {
	kind   routeKind
	filter ArchiveFilter // routeHome, routeArchive
	postID uuid.UUID     // routeComments
	page   int           // routeComments, 0-based
	slug   string        // routePost
	err    error         // ErrMalformedID on an unparseable comment post id
}

// classify decides which content a request path addresses. It is a pure
// function of the lower-cased path and the configured prefixes; all parsing
// ambiguity degrades to defaults instead of failing the request.
//
// The archive grammar scans segments left to right: the literal tokens
// "category", "tag", and "page" flag the following segment, a bare segment
// is a year until one is captured (future years clamp to the current year)
// and a month after that (clamped to [1,12]), and "page" terminates
// parsing. Unparseable numbers are skipped.
func classify(path, blogPrefix, archiveSlug, assetPrefix string, now time.Time) route {
	url := strings.ToLower(path)

	switch {
	case assetPrefix != "" && strings.HasPrefix(url, assetPrefix):
		return route{kind: routeStatic}

	case url == "" || url == blogPrefix:
		return route{kind: routeHome, filter: ArchiveFilter{Page: 1}}

	case strings.HasPrefix(url, archiveSlug):
		segments := strings.Split(strings.TrimPrefix(url, "/"), "/")
		if len(segments) < 2 {
			// The bare archive slug carries no filter; not a match.
			return route{}
		}
		return route{kind: routeArchive, filter: parseArchiveFilter(segments, now)}

	case strings.HasPrefix(url, "/comments/"):
		segments := strings.Split(strings.TrimPrefix(url, "/"), "/")
		postID, err := uuid.Parse(segments[1])
		if err != nil {
			return route{err: ErrMalformedID}
		}
		page := 0
		if len(segments) > 2 {
			if n, err := strconv.Atoi(segments[2]); err == nil && n >= 0 {
				page = n
			}
		}
		return route{kind: routeComments, postID: postID, page: page}

	default:
		return route{kind: routePost, slug: strings.ReplaceAll(url, blogPrefix, "")}
	}
}

// parseArchiveFilter runs the segment grammar. segments[0] is the archive
// slug itself.
func parseArchiveFilter(segments []string, now time.Time) ArchiveFilter {
	filter := ArchiveFilter{Page: 1}
	var foundCategory, foundTag, foundPage, yearSet bool

	for n := 1; n < len(segments); n++ {
		seg := segments[n]

		if seg == "category" && !foundPage {
			foundCategory = true
			continue
		}
		if seg == "tag" && !foundPage {
			foundTag = true
			continue
		}
		if seg == "page" {
			foundPage = true
			continue
		}

		if foundCategory {
			filter.Category = seg
			foundCategory = false
		}
		if foundTag {
			filter.Tag = seg
			foundTag = false
		}
		if foundPage {
			if v, err := strconv.Atoi(seg); err == nil {
				filter.Page = v
			}
			break
		}

		// Bare segments are period filters. A captured category or tag slug
		// deliberately falls through here, so a numeric slug also sets the year.
		if !yearSet {
			if v, err := strconv.Atoi(seg); err == nil {
				if v > now.Year() {
					v = now.Year()
				}
				filter.Year = v
				yearSet = true
			}
		} else {
			if v, err := strconv.Atoi(seg); err == nil {
				if v < 1 {
					v = 1
				}
				if v > 12 {
					v = 12
				}
				filter.Month = v
			}
		}
	}
	return filter
}
