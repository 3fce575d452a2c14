package scene

// checkIntersections fires intersection triggers on state changes only: enter
// actions run when a pair starts overlapping, exit actions when it stops.
// Each source/target pair is tested once per frame whatever the number or
// order of actions registered for it.
func (s *Scene) checkIntersections() {
	for _, source := range s.frame.meshesForIntersections {
		am := source.ActionManager
		if am == nil || source.IsDisposed() {
			continue
		}
		actions := am.IntersectionActions()

		var checked []*Mesh
		for _, a := range actions {
			other := a.Target()
			if !isIntersectionTrigger(a.Trigger()) || other == nil || other.IsDisposed() {
				continue
			}
			if indexOf(checked, other) > -1 {
				continue
			}
			checked = append(checked, other)

			// the target may have been skipped by the visibility pass
			other.ComputeWorldMatrix()
			intersecting := other.IntersectsMesh(source, pairPrecise(actions, other))
			current := indexOf(source.intersectionsInProgress, other)

			switch {
			case intersecting && current == -1:
				source.intersectionsInProgress = append(source.intersectionsInProgress, other)
				runIntersectionActions(actions, TriggerIntersectionEnter, source, other)
			case !intersecting && current > -1:
				source.intersectionsInProgress = removeAt(source.intersectionsInProgress, current)
				runIntersectionActions(actions, TriggerIntersectionExit, source, other)
			}
		}
	}
}

func isIntersectionTrigger(t Trigger) bool {
	return t == TriggerIntersectionEnter || t == TriggerIntersectionExit
}

// pairPrecise reports whether any action on the pair asks for the precise
// test.
func pairPrecise(actions []IntersectionAction, target *Mesh) bool {
	for _, a := range actions {
		if a.Target() == target && isIntersectionTrigger(a.Trigger()) && a.Precise() {
			return true
		}
	}
	return false
}

func runIntersectionActions(actions []IntersectionAction, trigger Trigger, source, target *Mesh) {
	for _, a := range actions {
		if a.Trigger() == trigger && a.Target() == target {
			a.Execute(NewMeshActionEvent(source, nil, target))
		}
	}
}
