package constants

import "time"

const (
	// TitleClusterThreshold is the minimum similarity score for an
	// employment title to join an existing role cluster.
	TitleClusterThreshold = 0.82

	// SkillMatchThreshold is the minimum similarity score for a duty
	// string to be attributed to a known skill.
	SkillMatchThreshold = 0.78

	// ClusterTitlesSample caps the number of raw titles reported per
	// role cluster in the processed output.
	ClusterTitlesSample = 20

	// Present is the sentinel end period for an ongoing employment.
	Present = "present"

	// WarnProcessingFailed is recorded when a stage fault is caught at
	// the processor boundary and a best-effort record is returned.
	WarnProcessingFailed = "processing_failed"

	// DefaultSimilarityCacheSize bounds the similarity memoization cache.
	DefaultSimilarityCacheSize = 20000
)

const (
	// CleanedTextMD5SetKey is the Redis Set key holding MD5 digests of
	// already-processed cleaned_text blobs.
	CleanedTextMD5SetKey = "resumes:cleaned_md5s"

	// CleanedTextMD5Expire is how long the dedup set survives without
	// new members.
	CleanedTextMD5Expire = 365 * 24 * time.Hour
)
