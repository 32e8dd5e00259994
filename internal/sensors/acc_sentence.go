package sensors

import (
	nmea "github.com/adrianmo/go-nmea"
)

// TypeACC is the sentence type of the accelerometer sentence emitted by
// the serial accelerometer firmware:
//
//	$IIACC,<ax>,<ay>,<az>*CS
//
// with ax, ay, az in m/s². Any talker ID is accepted.
const TypeACC = "ACC"

// ACC is a parsed accelerometer sentence.
type ACC struct {
	nmea.BaseSentence
	Ax float64
	Ay float64
	Az float64
}

func newACC(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	p.AssertType(TypeACC)
	return ACC{
		BaseSentence: s,
		Ax:           p.Float64(0, "ax"),
		Ay:           p.Float64(1, "ay"),
		Az:           p.Float64(2, "az"),
	}, p.Err()
}

var sentenceParser = nmea.SentenceParser{
	CustomParsers: map[string]nmea.ParserFunc{
		TypeACC: newACC,
	},
}

// ParseACC parses one line. Checksums are verified; other sentence types
// are returned as errors so callers can skip them.
func ParseACC(line string) (ACC, error) {
	sentence, err := sentenceParser.Parse(line)
	if err != nil {
		return ACC{}, err
	}
	acc, ok := sentence.(ACC)
	if !ok {
		return ACC{}, &notACCError{dataType: sentence.DataType()}
	}
	return acc, nil
}

type notACCError struct{ dataType string }

func (e *notACCError) Error() string { return "not an ACC sentence: " + e.dataType }
