package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

// Block is one question/answer pair found in a markdown file.
type Block struct {
	Question string
	Answer   string
	Context  string
	Line     int // line of the Q: prefix, starting at 1
}

type state int

const (
	seeking state = iota
	readingQuestion
	readingAnswer
	readingContext
)

// ParseFile reads a file from the given path and extracts all blocks.
func ParseFile(path string) ([]Block, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

type blockParser struct {
	blocks  []Block
	current Block
	lines   []string
	state   state
}

// flushField stores the buffered lines in the field being read.
func (p *blockParser) flushField() {
	if len(p.lines) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.lines, "\n"))
	switch p.state {
	case readingQuestion:
		p.current.Question = content
	case readingAnswer:
		p.current.Answer = content
	case readingContext:
		p.current.Context = content
	}
	p.lines = nil
}

// finishBlock closes the current block, keeping it only if it has a question.
func (p *blockParser) finishBlock() {
	p.flushField()
	if p.current.Question != "" {
		p.blocks = append(p.blocks, p.current)
	}
	p.current = Block{}
	p.state = seeking
}

// startField switches to a new field, seeding it with the rest of the prefixed line.
func (p *blockParser) startField(s state, line, prefix string) {
	p.flushField()
	p.state = s
	p.lines = append(p.lines, strings.TrimPrefix(line[len(prefix):], " "))
}

// Parse reads from an io.Reader and extracts all blocks. A block starts at a
// "Q:" line and ends at the next "Q:", a "---" separator or end of input.
func Parse(r io.Reader) ([]Block, error) {
	scanner := bufio.NewScanner(r)
	p := &blockParser{state: seeking}
	lineNo := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		switch {
		case line == separator:
			p.finishBlock()
		case strings.HasPrefix(line, questionPrefix):
			if p.state != seeking {
				p.finishBlock()
			}
			p.current.Line = lineNo
			p.startField(readingQuestion, line, questionPrefix)
		case strings.HasPrefix(line, answerPrefix):
			p.startField(readingAnswer, line, answerPrefix)
		case strings.HasPrefix(line, contextPrefix):
			p.startField(readingContext, line, contextPrefix)
		case p.state != seeking:
			p.lines = append(p.lines, line)
		}
	}

	p.finishBlock()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.blocks, nil
}
