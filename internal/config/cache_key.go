package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CourseListKey returns the cache key for the full course listing.
func (r *CacheKeyStruct) CourseListKey() string {
	return "courses:all"
}

// CourseListGenerationKey returns the counter bumped whenever the course
// listing is invalidated.
func (r *CacheKeyStruct) CourseListGenerationKey() string {
	return "courses:all:gen"
}

// CourseSeatsChannel returns the Redis PubSub channel carrying seat count changes for a course.
func (r *CacheKeyStruct) CourseSeatsChannel(courseID int) string {
	return fmt.Sprintf("course:%d:seats", courseID)
}

// RateLimitKey returns the counter key for a client within a fixed window.
func (r *CacheKeyStruct) RateLimitKey(clientIP string, window int64) string {
	return fmt.Sprintf("ratelimit:%s:%d", clientIP, window)
}

var CacheKey = NewCacheKeyStruct()
