package shell

const usage = `Commands:
  load <model.json>        load a trained tree (relative names resolve against the data path)
  scene -hand <tiles> ...  describe a decision; see "help scene"
  scene                    show the current decision
  scene reset              forget the current decision
  estimate                 danger of every candidate discard, most dangerous first
  features <tile>          features set for a candidate
  tree                     print the loaded tree
  hist                     histogram of leaf probabilities
  help [command]           this text, or help on one command
  exit                     leave the shell`

var helpTopics = map[string]string{
	"scene": `scene [-hand <tiles>] [-prereach <tiles>] [-safe <tiles>] [-visible <tiles>]
      [-dora <tiles>] [-bakaze <wind>] [-jikaze <wind>]

Tiles use mjai notation ("1m 5pr E C") or compact runs ("123m456p").
-prereach lists the reached player's discards up to the reach tile.
-jikaze is the reached player's seat wind. Options keep their previous
value when omitted. Without -visible, every tile named elsewhere in the
scene counts as visible.`,
	"load": `load <model.json>

Loads a tree saved by "hoju train". Models are cached, so loading the same
file again is free.`,
	"estimate": `estimate

Prints each distinct candidate in the hand with its estimated chance of
dealing into the reached player, the confidence interval of its leaf and
the number of training samples behind it.`,
	"features": `features <tile>

Lists the catalog features that are true for <tile> in the current scene.`,
	"hist": `hist

Plots how the leaf probabilities of the loaded tree are distributed.`,
}
