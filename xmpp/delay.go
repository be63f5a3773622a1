/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"time"
)

const delayNamespace = "urn:xmpp:delay"

const delayStampFormat = "2006-01-02T15:04:05Z"

// Delay attaches element's Delayed Delivery information.
func (e *Element) Delay(from string, text string) {
	d := NewElementNamespace("delay", delayNamespace)
	if len(from) > 0 {
		d.SetAttribute("from", from)
	}
	d.SetAttribute("stamp", time.Now().UTC().Format(delayStampFormat))

	if len(text) > 0 {
		d.SetText(text)
	}
	e.AppendElement(d)
}

// DelayStamp returns the Delayed Delivery timestamp attached
// to the element, if any.
func (e *Element) DelayStamp() (time.Time, bool) {
	d := e.elements.ChildNamespace("delay", delayNamespace)
	if d == nil {
		return time.Time{}, false
	}
	stamp := d.Attributes().Get("stamp")
	if len(stamp) == 0 {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
