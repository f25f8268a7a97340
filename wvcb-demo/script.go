package main

// defaultScript mirrors what a handlers file passed with --script provides.
const defaultScript = `
var userArgs = [
	{ val: "I am an Object arg" },
	["I am an Object array arg"],
	123.321,
	"etc...",
];

function onDispatch(w, arg) {
	log("dispatch returns: " + typeof arg + ": " + JSON.stringify({ w: w, arg: arg }));
}

function onBind(indexOrBound, maybeBound) {
	if (maybeBound === undefined || maybeBound === null) {
		return indexOrBound;
	}
	return userArgs[indexOrBound];
}
`

const defaultHTML = `<html>
  <body>
    <h1>Hello Webview</h1>
    <p>Callbacks run on a single script loop. This window closes itself in a few seconds.</p>
    <div id="bound"><h3>Returned values from the bound function:</h3></div>
  </body>
  <script>
    window.appendBoundRes = function (res) {
      res = typeof res !== "string" ? JSON.stringify(res, null, 4) : res;
      document.getElementById("bound").innerHTML += "<p>" + res + "</p>";
    };
  </script>
</html>`
