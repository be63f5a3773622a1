/*
 * Copyright (c) 2026 The dialogo developers.
 * See the LICENSE file for more information.
 */

package streamerror

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamErrorElement(t *testing.T) {
	el := ErrNotAuthorized.Element()
	require.Equal(t, "stream:error", el.Name())
	reason := el.Elements().ChildNamespace("not-authorized", "urn:ietf:params:xml:ns:xmpp-streams")
	require.NotNil(t, reason)
	require.Equal(t, "not-authorized", ErrNotAuthorized.Error())
}
