package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clipSource = `package test {
  public dynamic class MyClip extends MovieClip {
    function my_test() : * {
      this.text0 = "";
      this.text1 = "some ascii text";
      this.text2 = "some ascii text with いち some Japanese";
      this.text3 = "<html>simple html</html>";
      this.text4 = "<html>advanced-html-1<font color=\'#AFFFFFF\'>advanced-html-2</font>&nbsp;advanced-html-3</html>";
      this.text5 = "いち。"; // short Japanese with punctuation
      this.text6 = "いち"; // short Japanese without punctuation
      this.text7 = "いちにさん一二三"; // long Japanese without punctuation
      this.text8 = "<html>simple html with replacement to be escaped</html>";
    }
  }
}
`

func newASParser(t *testing.T, mode Mode) *ActionScriptParser {
	t.Helper()
	p, err := NewActionScriptParser(DefaultRules(mode))
	require.NoError(t, err)
	return p
}

func TestActionScriptEscapedQuote(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("a.as", `var x:String = "abc\"def";`)
	require.NoError(t, err)
	require.Len(t, res.Texts, 1)
	assert.Equal(t, `abc"def`, res.Texts[0].Text)
	assert.Equal(t, 1, res.Texts[0].Line)
	assert.Equal(t, 17, res.Texts[0].Column)

	out, err := p.Reconstruct(res, []string{`xyz"123`})
	require.NoError(t, err)
	assert.Equal(t, `var x:String = "xyz\"123";`, out)
}

func TestActionScriptSingleQuotes(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("a.as", `label.text = 'It\'s fine';`)
	require.NoError(t, err)
	assert.Equal(t, []string{"It's fine"}, res.Strings())
	assert.Equal(t, "'", res.Texts[0].Context["quote"])

	out, err := p.Reconstruct(res, []string{"Don't \"panic\"\n"})
	require.NoError(t, err)
	assert.Equal(t, `label.text = 'Don\'t "panic"\n';`, out)
}

func TestActionScriptHTMLMode(t *testing.T) {
	p := newASParser(t, ModeHTML)
	assert.Equal(t, ModeHTML, p.Mode())

	res, err := p.Parse("clip.as", clipSource)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"simple html",
		"advanced-html-1",
		"advanced-html-2",
		"advanced-html-3",
		"simple html with replacement to be escaped",
	}, res.Strings())
	for _, et := range res.Texts {
		assert.Equal(t, "html", et.Context["literal"])
	}

	out, err := p.Reconstruct(res, []string{
		"REPLACE1",
		"REPLACE2",
		"REPLACE3",
		"REPLACE4",
		"REPLACE7\"<&nbsp;\n",
	})
	require.NoError(t, err)

	want := `package test {
  public dynamic class MyClip extends MovieClip {
    function my_test() : * {
      this.text0 = "";
      this.text1 = "some ascii text";
      this.text2 = "some ascii text with いち some Japanese";
      this.text3 = "<html>REPLACE1</html>";
      this.text4 = "<html>REPLACE2<font color=\'#AFFFFFF\'>REPLACE3</font>&nbsp;REPLACE4</html>";
      this.text5 = "いち。"; // short Japanese with punctuation
      this.text6 = "いち"; // short Japanese without punctuation
      this.text7 = "いちにさん一二三"; // long Japanese without punctuation
      this.text8 = "<html>REPLACE7\"&lt;&amp;nbsp;\n</html>";
    }
  }
}
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("reconstructed source mismatch (-want +got):\n%s", diff)
	}
}

func TestActionScriptJapaneseMode(t *testing.T) {
	p := newASParser(t, ModeJapanese)
	res, err := p.Parse("clip.as", clipSource)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"simple html",
		"advanced-html-1",
		"advanced-html-2",
		"advanced-html-3",
		"いち。",
		"いちにさん一二三",
		"simple html with replacement to be escaped",
	}, res.Strings())
}

func TestActionScriptHeuristicMode(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("clip.as", clipSource)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"some ascii text",
		"some ascii text with いち some Japanese",
		"simple html",
		"advanced-html-1",
		"advanced-html-2",
		"advanced-html-3",
		"いち。",
		"いち",
		"いちにさん一二三",
		"simple html with replacement to be escaped",
	}, res.Strings())
	assert.Equal(t, 5, res.Texts[0].Line)
}

func TestActionScriptHeuristicExclusions(t *testing.T) {
	src := `package game {
import flash.events.Event;
include "shared/constants.as";
[Embed(source="font.ttf", fontName="Game Font")]
public class Menu {
  function init():void {
    addEventListener("Enter Frame", onFrame);
    trace("Debug output here");
    if (mode == "Start Game") { return; }
    var color:String = "#FFF";
    var hex:String = "0xFF00FF";
    var size:String = "12px";
    var img:String = "assets/bg.png";
    var file:String = "bg.png";
    var cls:String = "flash.events.Event";
    var id:String = "myVar";
    var one:String = "a";
    var cfg:Object = {"Title Key": 1, "Other Key": 2};
    var v = settings["Some Key"];
    showMessage("Hello there");
    var title:String = "Start";
    var list:Array = ["Only one"];
    var yes:String = ok ? "Yes please" : "No thanks";
    var jp:String = "はい";
  }
}
}
`
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("menu.as", src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Hello there",
		"Start",
		"Only one",
		"Yes please",
		"No thanks",
		"はい",
	}, res.Strings())
	assert.Equal(t, "showMessage", res.Texts[0].Context["callee"])
}

func TestActionScriptIgnoresCommentsAndRegex(t *testing.T) {
	src := `// "Not a string" in a comment
/* "Also not" a string
   spanning 'lines' */
var re:RegExp = /"[^"]*"/g;
var half:Number = total / 2; var s:String = "Half done";
var q:Number = (a) / (b) / 2;
var msg:String = "Real text";
`
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("c.as", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Half done", "Real text"}, res.Strings())
}

func TestActionScriptEscapeSequences(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("e.as", `t = "Line\none\ttab あ\x41 \u{1F600}";`)
	require.NoError(t, err)
	require.Len(t, res.Texts, 1)
	assert.Equal(t, "Line\none\ttab あA \U0001F600", res.Texts[0].Text)

	out, err := p.Reconstruct(res, []string{"Two\nlines\\"})
	require.NoError(t, err)
	assert.Equal(t, `t = "Two\nlines\\";`, out)
}

func TestActionScriptHTMLWithSplitEscape(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("h.as", `t = "<html>a\<b>c</b></html>";`)
	require.NoError(t, err)
	require.Len(t, res.Texts, 1)
	assert.Equal(t, "<html>a<b>c</b></html>", res.Texts[0].Text)
	assert.Equal(t, "string", res.Texts[0].Context["literal"])
}

func TestActionScriptBlankHTMLChunksAreNotExtracted(t *testing.T) {
	p := newASParser(t, ModeHTML)
	res, err := p.Parse("h.as", `t = "<html> <p>Hi</p> &nbsp; </html>";`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"Hello & bye"})
	require.NoError(t, err)
	assert.Equal(t, `t = "<html> <p>Hello &amp; bye</p> &nbsp; </html>";`, out)
}

func TestActionScriptMalformedLiteral(t *testing.T) {
	p := newASParser(t, ModeHeuristic)

	_, err := p.Parse("bad.as", "var ok = 1;\nvar s = \"unterminated;\nvar t = 2;")
	var ml *MalformedLiteralError
	require.True(t, errors.As(err, &ml))
	assert.Equal(t, "bad.as", ml.File)
	assert.Equal(t, 2, ml.Line)
	assert.Equal(t, 9, ml.Column)

	_, err = p.Parse("bad.as", `var s = 'never closed`)
	require.True(t, errors.As(err, &ml))
	assert.Equal(t, "unterminated string literal", ml.Reason)
}

func TestActionScriptLengthMismatch(t *testing.T) {
	p := newASParser(t, ModeHTML)
	res, err := p.Parse("clip.as", clipSource)
	require.NoError(t, err)

	_, err = p.Reconstruct(res, []string{"too", "few"})
	var lm *LengthMismatchError
	require.True(t, errors.As(err, &lm))
	assert.Equal(t, 5, lm.Expected)
	assert.Equal(t, 2, lm.Got)
}

func TestActionScriptIdentityRoundTrip(t *testing.T) {
	fixtures := []string{
		clipSource,
		"",
		`var x:String = "abc\"def";`,
		"var crlf:String = \"Windows\\\r\nline\";\r\nvar t = 'x';\r\n",
		`t = "A\x42 \'odd\' escapes \q";`,
		`t = "<html>a\<b>c</b></html>";`,
		"var re = /'/; var s = \"after regex\";",
		"var x:XML = <msg>Don't stop</msg>; var s = \"after xml\";",
	}
	for _, mode := range Modes {
		p := newASParser(t, mode)
		for _, src := range fixtures {
			res, err := p.Parse("id.as", src)
			require.NoError(t, err, "mode %s", mode)
			assert.Equal(t, src, res.Content())

			out, err := p.Reconstruct(res, res.Strings())
			require.NoError(t, err)
			if diff := cmp.Diff(src, out); diff != "" {
				t.Errorf("mode %s: identity replace changed source (-want +got):\n%s", mode, diff)
			}
		}
	}
}

func TestNewActionScriptParserRejectsUnknownMode(t *testing.T) {
	_, err := NewActionScriptParser(Rules{Mode: "everything"})
	require.Error(t, err)

	_, err = ParseMode("html")
	require.NoError(t, err)
}

func TestDecodeEncodeLiteral(t *testing.T) {
	cases := map[string]string{
		`plain`:        "plain",
		`a\\b`:         `a\b`,
		`\0`:           "\x00",
		`\uD83D\uDE00`: "\U0001F600",
		`trailing\`:    `trailing\`,
		`bad\u12`:      "badu12",
		"cont\\\nnued": "contnued",
		`\'single\'`:   "'single'",
		`\/slash`:      "/slash",
		`\x4g`:         "x4g",
	}
	for in, want := range cases {
		assert.Equal(t, want, decodeLiteral(in), "decode %q", in)
	}

	assert.Equal(t, `say \"hi\"\r\n`, encodeLiteral("say \"hi\"\r\n", '"'))
	assert.Equal(t, `it\'s "ok"`, encodeLiteral(`it's "ok"`, '\''))
	assert.Equal(t, `\u0001\u2028`, encodeLiteral("\x01\u2028", '"'))
}

func TestActionScriptDivisionAfterPostfix(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	src := `var a = b++ / 2; var s = "Hello there"; var c = d-- / 4;`
	res, err := p.Parse("a.as", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello there"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"Bonjour"})
	require.NoError(t, err)
	assert.Equal(t, `var a = b++ / 2; var s = "Bonjour"; var c = d-- / 4;`, out)
}

func TestActionScriptSkipsCaseLabels(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	src := `switch (state) {
  case "Game Over":
    label.text = "Try again";
    break;
  case 'Paused' :
    label.text = "Paused";
}`
	res, err := p.Parse("a.as", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Try again", "Paused"}, res.Strings())
	assert.Equal(t, 3, res.Texts[0].Line)
	assert.Equal(t, 6, res.Texts[1].Line)
}

func TestActionScriptXMLLiterals(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	src := `var x:XML = <msg lang="en">Don't stop <b>now</b><br/></msg>;
var empty:XML = <note/>;
var nested:XML = <a><a>it's</a></a>;
var s = "Hello there";
if (n <limit) { s = 'Less'; }
`
	res, err := p.Parse("a.as", src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello there", "Less"}, res.Strings())

	out, err := p.Reconstruct(res, []string{"Salut", "Moins"})
	require.NoError(t, err)
	want := `var x:XML = <msg lang="en">Don't stop <b>now</b><br/></msg>;
var empty:XML = <note/>;
var nested:XML = <a><a>it's</a></a>;
var s = "Salut";
if (n <limit) { s = 'Moins'; }
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("reconstructed source mismatch (-want +got):\n%s", diff)
	}
}

func TestActionScriptUnclosedXMLFallsBackToOperators(t *testing.T) {
	p := newASParser(t, ModeHeuristic)
	res, err := p.Parse("a.as", `var v:Vector.<String> = new <String>["Start game"];`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Start game"}, res.Strings())
}

func TestActionScriptJapaneseModeNeedsJapanese(t *testing.T) {
	p := newASParser(t, ModeJapanese)
	res, err := p.Parse("a.as", `a = "안녕하세요여러분"; b = "はじめからあそぶ"; c = "ok。";`)
	require.NoError(t, err)
	assert.Equal(t, []string{"はじめからあそぶ"}, res.Strings())
}
