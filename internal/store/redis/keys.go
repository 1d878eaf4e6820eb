package redis

const (
	// KeyPrefixDiscussion is the prefix for discussion keys
	KeyPrefixDiscussion = "agora:discussion:"
	// KeyPrefixUser is the prefix for user keys
	KeyPrefixUser = "agora:user:"
	// KeyPrefixCache is the prefix for query cache keys
	KeyPrefixCache = "agora:cache:"
	// KeyAllDiscussions is the key for the set of all discussion IDs
	KeyAllDiscussions = "agora:discussions:all"
	// KeyAllUsers is the key for the set of all user IDs
	KeyAllUsers = "agora:users:all"
)

// DiscussionKey returns the Redis key for a discussion by ID
func DiscussionKey(id string) string {
	return KeyPrefixDiscussion + id
}

// UserKey returns the Redis key for a user by ID
func UserKey(id string) string {
	return KeyPrefixUser + id
}

// CacheKey returns the Redis key for a query cache entry
func CacheKey(key string) string {
	return KeyPrefixCache + key
}
