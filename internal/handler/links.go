package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/forgo/setlist/api/internal/model"
)

// Collection paths used in self links
const (
	bandsPath    = "bands"
	concertsPath = "concerts"
)

// baseURL is scheme://host of the incoming request. A proxy's
// X-Forwarded-Proto wins over the local connection.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		first, _, _ := strings.Cut(proto, ",")
		scheme = strings.TrimSpace(first)
	}
	return scheme + "://" + r.Host
}

func selfLink(r *http.Request, collection string, id model.ID) string {
	return fmt.Sprintf("%s/%s/%d", baseURL(r), collection, id)
}

func pageLink(r *http.Request, collection string, limit, offset int) string {
	return fmt.Sprintf("%s/%s?limit=%d&offset=%d", baseURL(r), collection, limit, offset)
}

// linkRefs returns a copy of refs with self links into collection
func linkRefs(r *http.Request, collection string, refs []model.Ref) []model.Ref {
	out := make([]model.Ref, len(refs))
	for i, ref := range refs {
		out[i] = model.Ref{ID: ref.ID, Self: selfLink(r, collection, ref.ID)}
	}
	return out
}

func presentBand(r *http.Request, b *model.Band) *model.Band {
	b.Self = selfLink(r, bandsPath, b.ID)
	b.Concerts = linkRefs(r, concertsPath, b.Concerts)
	return b
}

func presentConcert(r *http.Request, c *model.Concert) *model.Concert {
	c.Self = selfLink(r, concertsPath, c.ID)
	c.Band.Self = selfLink(r, bandsPath, c.Band.ID)
	return c
}

func presentUserConcerts(r *http.Request, u *model.User) *model.UserConcerts {
	return &model.UserConcerts{
		ID:       u.ID,
		AuthID:   u.AuthID,
		Concerts: linkRefs(r, concertsPath, u.Concerts),
	}
}
