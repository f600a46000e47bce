// Package marketing manages promotional campaigns.
//
// # Overview
//
// A campaign has a name, a URL slug and a run window, plus an active
// switch so a campaign can be staged ahead of time and toggled on
// when it launches. Creating, listing, toggling and deleting
// campaigns requires the marketing permission (admin roles). The
// active listing is open so banners can render on public pages.
package marketing
