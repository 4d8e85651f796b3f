package domain

import "time"

var (
	MessageSuccessGetBookmarks   = "bookmarks retrieved"
	MessageSuccessAddBookmark    = "recipe bookmarked"
	MessageSuccessRemoveBookmark = "bookmark removed"
	MessageSuccessCheckBookmark  = "bookmark status retrieved"

	MessageFailedGetBookmarks = "failed to get bookmarks"

	ErrAlreadyBookmarked = NewSoftError("recipe already bookmarked")
	ErrNotBookmarked     = NewSoftError("recipe is not bookmarked")
)

type (
	BookmarkListItem struct {
		RecipeListItem
		BookmarkedAt time.Time `json:"bookmarked_at"`
	}

	BookmarkResponse struct {
		IsBookmarked   bool `json:"is_bookmarked"`
		BookmarksCount int  `json:"bookmarks_count"`
	}

	BookmarkCheckResponse struct {
		IsBookmarked bool `json:"is_bookmarked"`
	}
)
