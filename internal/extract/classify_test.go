package extract

import (
	"testing"

	"github.com/ppiankov/regmap/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		sentence string
		wantOK   bool
		wantType model.ObligationType
	}{
		{"Firms must submit quarterly reports to the authority.", true, model.TypeReporting},
		{"They should maintain complete records for at least five years.", true, model.TypeRecordkeeping},
		{"This paragraph is descriptive only.", false, model.TypeGeneral},
		{"Firms shall establish a control framework.", true, model.TypeControl},
		{"Staff are prohibited from trading on inside information.", true, model.TypeProhibition},
		{"Employees must be trained every year.", true, model.TypeTraining},
		{"The firm must act honestly.", true, model.TypeGeneral},
		{"Payment is due by the end of the month.", true, model.TypeGeneral},
		{"Notice is given no later than noon.", true, model.TypeGeneral},
		{"The weather was pleasant today.", false, model.TypeGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			ok, typ := Classify(tt.sentence)
			if ok != tt.wantOK {
				t.Errorf("Expected isObligation=%v, got %v", tt.wantOK, ok)
			}
			if typ != tt.wantType {
				t.Errorf("Expected type %q, got %q", tt.wantType, typ)
			}
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Contains both a reporting and a recordkeeping keyword
	_, typ := Classify("Firms must maintain records and report them annually.")
	if typ != model.TypeReporting {
		t.Errorf("Expected reporting to win over recordkeeping, got %q", typ)
	}

	// Control is checked before prohibition
	_, typ = Classify("The process must restrict access.")
	if typ != model.TypeControl {
		t.Errorf("Expected control to win over prohibition, got %q", typ)
	}
}

func TestClassify_BareByNeedsWordBoundary(t *testing.T) {
	ok, _ := Classify("Nearby gardens bloom.")
	if ok {
		t.Error("Expected 'nearby' not to match the bare 'by' pattern")
	}

	ok, _ = Classify("Filed by the clerk.")
	if !ok {
		t.Error("Expected bare 'by' to mark an obligation")
	}
}
