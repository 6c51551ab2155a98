package docpatch

import "context"

// Validate normalizes a candidate's text and asks the oracle whether it
// applies. When the check fails and the candidate carries a bare '@@'
// header, the headers are reconstructed from the hunk bodies and the
// oracle is asked once more. Anything still failing becomes an
// InvalidPatchError holding the oracle's last diagnostic; the caller
// decides whether to escalate to a coarser shape or drop the target.
func Validate(ctx context.Context, oracle Oracle, docPath, oldContent string, exists bool, cand Candidate) (Validated, error) {
	cand.Text = normalizePatchText(cand.Text)

	checkErr := oracle.Check(ctx, docPath, oldContent, exists, cand.Text)
	if checkErr == nil {
		return Validated{Candidate: cand}, nil
	}

	if hasBareHunkHeader(cand.Text) {
		repaired, err := repairHeaders(oldContent, cand.Text, docPath)
		if err == nil {
			if rerr := oracle.Check(ctx, docPath, oldContent, exists, repaired); rerr == nil {
				cand.Text = repaired
				return Validated{Candidate: cand}, nil
			} else {
				checkErr = rerr
			}
		}
	}

	return Validated{}, &InvalidPatchError{TargetPath: docPath, Diagnostic: checkErr.Error()}
}
