// Package browser drives a Chrome session through the DevTools protocol.
//
// A Session offers exactly what the collector needs from a browser: navigate
// to a URL, evaluate a JavaScript expression and decode its result, and
// capture a screenshot. Non-essential subresources (images, fonts,
// stylesheets, media, trackers) can be failed at the network layer to cut
// page-load time. A Chrome profile directory may only be used by one process
// at a time; New refuses to start when another process already holds it.
package browser
