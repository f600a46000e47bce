// Package shop offers a curated catalog of downloadable PDFs.
//
// # Overview
//
// The catalog of published items is visible to every signed-in tier.
// Premium items carry a price and require a pro-level account to
// download. Uploading new items needs the shop upload permission
// (admin roles); publishing, editing and deleting need the shop
// management permission (super admin). Item bytes live in blob
// storage under shop/<item_id>.pdf.
package shop
