package validation

// MaxFormBodySize is the largest accepted form body (16 KB). Every form in
// the app is a handful of short fields.
const MaxFormBodySize = 16 * 1024
