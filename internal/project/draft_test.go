package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/ensamble/internal/apperr"
	"github.com/fkhayef/ensamble/internal/upload"
)

var pdf = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

func script() *upload.File {
	return upload.NewFile("hamlet.pdf", upload.TypePDF, pdf)
}

func TestDraft_Defaults(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, StepScript, d.Step)
	assert.Equal(t, DefaultThemeColor, d.ThemeColor)
	assert.True(t, d.Locked())
}

func TestDraft_AttachScriptClearsSkip(t *testing.T) {
	for _, skip := range []bool{true, false} {
		d := NewDraft()
		d.SkipScript = skip

		require.NoError(t, d.AttachScript(script()))
		assert.False(t, d.SkipScript)
		assert.NotNil(t, d.Script)
	}
}

func TestDraft_RejectedScriptNeverAttached(t *testing.T) {
	d := NewDraft()
	d.SkipScript = true

	err := d.AttachScript(upload.NewFile("cover.png", "image/png", []byte("png")))
	assert.Equal(t, apperr.UnsupportedFileType, apperr.CategoryOf(err))

	err = d.AttachScript(&upload.File{Name: "huge.pdf", ContentType: upload.TypePDF, Size: 12 << 20})
	assert.Equal(t, apperr.FileTooLarge, apperr.CategoryOf(err))

	assert.Nil(t, d.Script)
	assert.True(t, d.SkipScript, "a rejected file leaves the draft unchanged")
}

func TestDraft_AdvanceGate(t *testing.T) {
	tests := []struct {
		name   string
		script bool
		skip   bool
		locked bool
	}{
		{name: "nothing", locked: true},
		{name: "skip", skip: true},
		{name: "script", script: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDraft()
			if tt.script {
				require.NoError(t, d.AttachScript(script()))
			}
			require.NoError(t, d.SetSkip(tt.skip))

			err := d.Advance()
			if tt.locked {
				assert.ErrorIs(t, err, ErrScriptRequired)
				assert.Equal(t, StepScript, d.Step)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StepConcept, d.Step)
		})
	}
}

func TestDraft_StepsClamp(t *testing.T) {
	d := NewDraft()
	d.Back()
	assert.Equal(t, StepScript, d.Step)

	require.NoError(t, d.SetSkip(true))
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Advance())
	}
	assert.Equal(t, StepProduction, d.Step)
	assert.Equal(t, "production", d.Step.String())

	d.Back()
	assert.Equal(t, StepCast, d.Step)
}

func TestDraft_SkipRefusedWithScript(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.AttachScript(script()))

	assert.ErrorIs(t, d.SetSkip(true), ErrSkipWithScript)
	assert.False(t, d.SkipScript)

	d.RemoveScript()
	assert.NoError(t, d.SetSkip(true))
	assert.True(t, d.SkipScript)
}

func TestDraft_FinishAndConfirm(t *testing.T) {
	d := NewDraft()
	assert.ErrorIs(t, d.Finish(), ErrNotFinalStep)
	assert.ErrorIs(t, d.Confirm(), ErrNotConfirming)

	d.Step = StepProduction
	require.NoError(t, d.Finish())
	assert.True(t, d.Confirming)

	require.NoError(t, d.Confirm())
	assert.False(t, d.Confirming)
}
