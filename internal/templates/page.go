package templates

// IndexPage is the whole UI: an upload control, the Estimate! button, and
// a before/after slider comparing the original with the rendered depth
// map. It ships inline so the binary serves a working page with an empty
// public dir; dropping an index.html into the public dir overrides it.
const IndexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>DepthEstimator</title>
<style>
  :root { color-scheme: light dark; }
  body {
    font-family: system-ui, -apple-system, sans-serif;
    max-width: 720px;
    margin: 2rem auto;
    padding: 0 1rem;
  }
  h1 { margin-bottom: 0.25rem; }
  .hint { color: #666; margin-top: 0; }
  form { display: flex; gap: 0.5rem; align-items: center; margin: 1.5rem 0; }
  button {
    padding: 0.4rem 1.2rem;
    font-size: 1rem;
    cursor: pointer;
  }
  button:disabled { cursor: wait; opacity: 0.6; }
  .error {
    color: #b00020;
    border: 1px solid #b00020;
    border-radius: 4px;
    padding: 0.5rem 0.75rem;
  }
  .compare {
    --pos: 50%;
    position: relative;
    margin: 1rem 0;
    line-height: 0;
    user-select: none;
  }
  .compare img {
    width: 100%;
    height: auto;
    display: block;
  }
  .compare .overlay {
    position: absolute;
    inset: 0;
    clip-path: inset(0 calc(100% - var(--pos)) 0 0);
  }
  .compare .divider {
    position: absolute;
    top: 0;
    bottom: 0;
    left: var(--pos);
    width: 2px;
    margin-left: -1px;
    background: #fff;
    box-shadow: 0 0 4px rgba(0,0,0,0.6);
    pointer-events: none;
  }
  .compare input[type=range] {
    position: absolute;
    inset: 0;
    width: 100%;
    height: 100%;
    margin: 0;
    opacity: 0;
    cursor: ew-resize;
  }
  .compare.plain .divider,
  .compare.plain input[type=range] { display: none; }
</style>
</head>
<body>
<main>
  <h1>DepthEstimator</h1>
  <p class="hint">Upload an image and drag the slider to compare it with its estimated depth map.</p>

  <form id="estimate-form">
    <input id="image-input" type="file" accept="image/*" required>
    <button id="estimate-button" type="submit">Estimate!</button>
  </form>

  <p id="error" class="error" hidden></p>

  <figure id="compare" class="compare" hidden>
    <img id="original-image" alt="original image">
    <img id="depth-image" class="overlay" alt="estimated depth map" hidden>
    <div class="divider"></div>
    <input id="slider-range" type="range" min="0" max="100" value="50" aria-label="comparison position">
  </figure>
</main>

<script>
(function () {
  var form = document.getElementById('estimate-form');
  var button = document.getElementById('estimate-button');
  var errorBox = document.getElementById('error');
  var figure = document.getElementById('compare');
  var originalImage = document.getElementById('original-image');
  var depthImage = document.getElementById('depth-image');
  var slider = document.getElementById('slider-range');

  slider.addEventListener('input', function () {
    figure.style.setProperty('--pos', slider.value + '%');
  });

  function setBusy(busy) {
    button.disabled = busy;
    button.textContent = busy ? 'Estimating...' : 'Estimate!';
  }

  function showError(message) {
    errorBox.textContent = message;
    errorBox.hidden = false;
  }

  function showOriginalOnly(originalUrl) {
    originalImage.src = originalUrl;
    depthImage.removeAttribute('src');
    depthImage.hidden = true;
    figure.classList.add('plain');
    figure.hidden = false;
  }

  function showComparison(originalUrl, depthUrl) {
    originalImage.src = originalUrl;
    depthImage.src = depthUrl;
    depthImage.hidden = false;
    figure.classList.remove('plain');
    figure.hidden = false;
    slider.value = 50;
    figure.style.setProperty('--pos', '50%');
  }

  form.addEventListener('submit', function (event) {
    event.preventDefault();

    var input = document.getElementById('image-input');
    if (!input.files.length) {
      return;
    }

    setBusy(true);
    errorBox.hidden = true;

    var data = new FormData();
    data.append('file', input.files[0]);

    fetch('/api/v1/estimate', { method: 'POST', body: data })
      .then(function (resp) {
        return resp.json().then(function (body) {
          if (!resp.ok) {
            showError(body.message || 'Request failed');
          } else if (body.error) {
            showOriginalOnly(body.original);
            showError(body.error);
          } else {
            showComparison(body.original, body.depth);
          }
        });
      })
      .catch(function (err) {
        showError('Request failed: ' + err);
      })
      .then(function () {
        setBusy(false);
      });
  });
})();
</script>
</body>
</html>
`
