package scraper

import (
	"encoding/json"
	"fmt"
)

// extractScript returns the day list of the richest calendar state on the
// page, chosen by most days and then most events.
const extractScript = `(() => {
  const states = window.calendarComponentStates;
  if (!states || typeof states !== 'object') {
    return JSON.stringify({present: false, entries: 0, candidates: 0, days: null});
  }
  const keys = Object.keys(states);
  let best = null, bestDays = -1, bestEvents = -1, candidates = 0;
  for (const k of keys) {
    const s = states[k];
    if (!s || !Array.isArray(s.days)) continue;
    candidates++;
    const nd = s.days.length;
    const ne = s.days.reduce((n, d) => n + (d && Array.isArray(d.events) ? d.events.length : 0), 0);
    if (nd > bestDays || (nd === bestDays && ne > bestEvents)) {
      best = s.days;
      bestDays = nd;
      bestEvents = ne;
    }
  }
  return JSON.stringify({present: true, entries: keys.length, candidates: candidates, days: best});
})()`

const htmlScript = `document.documentElement.outerHTML`

// extraction is the decoded result of extractScript
type extraction struct {
	Present    bool            `json:"present"`
	Entries    int             `json:"entries"`
	Candidates int             `json:"candidates"`
	Days       json.RawMessage `json:"days"`
}

// ready reports whether a non-empty day list was found
func (e extraction) ready() bool {
	if len(e.Days) == 0 || string(e.Days) == "null" {
		return false
	}
	var days []json.RawMessage
	if err := json.Unmarshal(e.Days, &days); err != nil {
		return false
	}
	return len(days) > 0
}

// drifted reports a state object that exists but no longer carries day lists
func (e extraction) drifted() bool {
	return e.Present && e.Entries > 0 && e.Candidates == 0
}

func decodeExtraction(raw string) (extraction, error) {
	var e extraction
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return extraction{}, fmt.Errorf("decoding calendar state: %w", err)
	}
	return e, nil
}
