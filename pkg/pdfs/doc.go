// Package pdfs stores user documents: metadata in PostgreSQL, bytes
// in blob storage.
//
// # Overview
//
// Uploads are quota-checked against the owner's role before any
// bytes are written. Content must carry the PDF magic header. Blob
// keys follow pdfs/<owner_id>/<pdf_id>.pdf, so a user's documents
// share a storage prefix. Deletes remove the record, the blob and
// release one slot of the PDF quota; the monthly upload counter is
// unaffected.
//
// # Related Packages
//
//   - pkg/storage: blob backends (filesystem, S3)
//   - pkg/usage: the counters uploads are charged against
//   - pkg/auth: quota derivation per role
package pdfs
