package watch

import "time"

// Tick runs one evaluation cycle. The driver calls it on a fixed
// cadence while the program runs; an inactive session makes it a
// no-op, so a stale tick after Stop can never fire a rule.
//
// Order matters within a tick: the break scheduler is evaluated
// before the navigation rules, so an active break suppresses the
// left-playlist alert on the same tick it is detected.
func (e *Engine) Tick() {
	if !e.session.Active {
		return
	}
	now := e.now()

	e.evalBreak(now)

	switch e.state {
	case stateAwaitingConfirm:
		if !e.promptDeadline.IsZero() && !now.Before(e.promptDeadline) {
			// Unanswered prompt resolves as a decline.
			e.resolveConfirm(false)
		}
	case stateTracking:
		e.evalNavigation(now)
	}
}

func (e *Engine) evalNavigation(now time.Time) {
	playlistID := e.probe.PlaylistID()
	videoID := e.probe.VideoID()

	// Left the playlist context entirely.
	if playlistID == "" {
		if e.session.ApprovedPlaylistID != "" && !e.breaks.OnBreak {
			e.handleLeftPlaylist()
		}
		return
	}

	if e.leftAlertID != "" && playlistID == e.session.ApprovedPlaylistID {
		e.notifier.Dismiss(e.leftAlertID)
		e.leftAlertID = ""
	}

	// Switched to a different playlist.
	if playlistID != e.session.ApprovedPlaylistID && e.session.ApprovedPlaylistID != "" && !e.breaks.OnBreak {
		e.beginConfirm(now, playlistID)
		return
	}

	if e.session.ApprovedPlaylistID == "" {
		// Monitoring began off-playlist; adopt the first one seen.
		e.approve(playlistID)
	}

	if playlistID == e.session.ApprovedPlaylistID {
		e.session.LastKnownPlaylistID = playlistID
		if videoID != "" && videoID != e.session.LastKnownVideoID {
			e.session.LastKnownVideoID = videoID
			e.persistSession()
		}
	}
}

func (e *Engine) handleLeftPlaylist() {
	if e.leftAlertID != "" {
		// Alert already showing; don't restack it every tick.
		return
	}
	e.playChime()
	e.leftAlertID = e.notifier.Notify(
		KindWarning,
		"You have navigated away from your study playlist!",
		0,
		&Action{Label: "Return to Study Playlist", Do: e.ReturnToApproved},
	)
	e.log.Infof("left approved playlist %q", e.session.ApprovedPlaylistID)
}

func (e *Engine) beginConfirm(now time.Time, playlistID string) {
	e.dismissPrompt()
	e.playChime()
	e.state = stateAwaitingConfirm
	e.promptID = e.newID()
	e.promptPlaylist = playlistID
	e.promptDeadline = now.Add(e.cfg.PromptTimeout)
	e.notifier.Confirm(e.promptID, "You're switching to a different playlist. Would you like to continue?")
	e.log.Infof("playlist change detected %q -> %q, awaiting confirmation", e.session.ApprovedPlaylistID, playlistID)
}

// RespondConfirm delivers the user's answer to the pending
// confirmation. Answers for a prompt that is no longer pending are
// ignored.
func (e *Engine) RespondConfirm(id string, confirmed bool) {
	if e.state != stateAwaitingConfirm || id != e.promptID {
		return
	}
	e.resolveConfirm(confirmed)
}

func (e *Engine) resolveConfirm(confirmed bool) {
	playlistID := e.promptPlaylist
	e.dismissPrompt()
	e.state = stateTracking

	if confirmed {
		e.approve(playlistID)
		e.session.LastKnownPlaylistID = playlistID
		e.session.LastKnownVideoID = e.probe.VideoID()
		e.persistSession()
		e.notifier.Notify(KindInfo, "Switching to new playlist. Stay focused on your studies!", 5*time.Second, nil)
		e.log.Infof("playlist switch confirmed, approved=%q", playlistID)
		return
	}

	e.notifier.Notify(
		KindInfo,
		"Returning to your previous study video...",
		declineNoticeDuration,
		&Action{Label: "Return Now", Do: e.ReturnToApproved},
	)
	e.log.Infof("playlist switch declined, keeping %q", e.session.ApprovedPlaylistID)
}

func (e *Engine) dismissPrompt() {
	if e.promptID == "" {
		return
	}
	e.notifier.Dismiss(e.promptID)
	e.promptID = ""
	e.promptPlaylist = ""
	e.promptDeadline = time.Time{}
}
