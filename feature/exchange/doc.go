// Package exchange reads an Exchange calendar through EWS.
//
// A CalendarView FindItem returns the occurrences of the window with recurring
// series already expanded. A second GetItem pass fetches the plain-text bodies.
// A view the server reports as incomplete fails the fetch rather than being
// mirrored partially.
package exchange
