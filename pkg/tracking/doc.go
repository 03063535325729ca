// Package tracking records user interactions (applications, feedback) in
// OpenSearch so the recommendation side can learn from behavior. Recording
// is best-effort: handlers log failures and move on.
package tracking
