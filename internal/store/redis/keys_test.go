package redis

import "testing"

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "discussion", got: DiscussionKey("d1"), want: "agora:discussion:d1"},
		{name: "user", got: UserKey("u1"), want: "agora:user:u1"},
		{name: "cache", got: CacheKey("discussion:d1"), want: "agora:cache:discussion:d1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}
