// Package paths is the single table of application URLs.
package paths

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	Home           = "/"
	Login          = "/auth/login"
	Register       = "/auth/register"
	Logout         = "/auth/logout"
	App            = "/app"
	Discussions    = "/app/discussions"
	Discussion     = "/app/discussions/{id}"
	Favorite       = "/app/discussions/{id}/favorite"
	Prefetch       = "/app/discussions/{id}/prefetch"
	Delete         = "/app/discussions/{id}/delete"
	FavoritesReset = "/app/favorites/reset"
	FavoritesFeed  = "/app/favorites/stream"
	Users          = "/app/users"
	Profile        = "/app/profile"

	Healthz = "/healthz"
	Readyz  = "/readyz"
	Infra   = "/infra"
	Reload  = "/reload"
	Metrics = "/metrics"
)

func withID(pattern, id string) string {
	return strings.Replace(pattern, "{id}", url.PathEscape(id), 1)
}

// DiscussionHref is the detail page of a discussion.
func DiscussionHref(id string) string { return withID(Discussion, id) }

// FavoriteHref is the toggle endpoint of a discussion.
func FavoriteHref(id string) string { return withID(Favorite, id) }

// PrefetchHref is the cache warm-up endpoint of a discussion.
func PrefetchHref(id string) string { return withID(Prefetch, id) }

// DeleteHref is the admin delete endpoint of a discussion.
func DeleteHref(id string) string { return withID(Delete, id) }

// DiscussionsPageHref is one page of the listing. Page 1 has no query.
func DiscussionsPageHref(page int) string {
	if page <= 1 {
		return Discussions
	}
	return Discussions + "?page=" + strconv.Itoa(page)
}

// FavoritesFeedHref is the live stream for one page of the listing.
func FavoritesFeedHref(page int) string {
	return FavoritesFeed + "?page=" + strconv.Itoa(max(page, 1))
}

// LoginHref is the login page, optionally returning to next afterwards.
func LoginHref(next string) string {
	if next == "" || !IsLocal(next) {
		return Login
	}
	return Login + "?redirectTo=" + url.QueryEscape(next)
}

// IsLocal reports whether target is an in-app path safe to redirect to.
func IsLocal(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Scheme == "" && u.Host == ""
}
