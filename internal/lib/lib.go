// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains clients for third-party services the relay talks to
// (currently Airtable, the record store holding the tasks).
package lib
