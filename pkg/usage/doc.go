// Package usage tracks per-user PDF counts and monthly upload counters.
//
// # Overview
//
// Every user has a single row of counters: the number of PDFs they
// currently hold and the number of uploads made in the current
// monthly period. Feature derivation in pkg/auth compares these
// counters against the role's quotas to decide whether an upload is
// allowed and whether the user is approaching a limit.
//
// Counters live in PostgreSQL with an optional short-TTL Redis
// read-through cache in front. Uploads increment both counters;
// deletes decrement only the PDF count, since monthly uploads are a
// high-water mark for the billing period. A cron scheduler zeroes the
// monthly counters at the start of each month.
//
// # Related Packages
//
//   - pkg/auth: quota definitions and feature derivation
//   - pkg/pdfs: records uploads and deletes against the counters
package usage
