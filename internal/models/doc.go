// package models defines the data model for the scrapedeck client:
// history records and their conflict payloads, push-channel events,
// metadata search shapes, and resolution requests.
package models
