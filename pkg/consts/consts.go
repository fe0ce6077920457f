package consts

// UnknownLabel is a canonical fallback label value used across the codebase
// when a more specific value (e.g., verdict label, rejection reason, status
// class) is not available.
const UnknownLabel = "unknown"
