package entity

// Sectors is the fixed set of facility sectors a session can select.
// Labels match the signage used by the facility, accents included.
var Sectors = []string{
	"CDU",
	"Pronto Socorro",
	"Centro Cirúrgico",
	"UTI",
	"Ambulatório",
	"7º Andar ( ORTOPEDIA / NEUROLOGIA )",
	"8º Andar ( CLÍNICA MÉDICA / CARDIOLOGIA )",
	"9º Andar ( PEDIATRIA )",
}

// DefaultSector is assumed for sessions with no persisted selection
const DefaultSector = "CDU"

// IsValidSector checks a label against the fixed sector set
func IsValidSector(label string) bool {
	for _, s := range Sectors {
		if s == label {
			return true
		}
	}
	return false
}
